package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/feedpost/feedpost/app/secrets"
)

// linkedinFixture wires a fake LinkedIn API plus a fake article site into a
// single server so the channel's URLs can all point at it.
type linkedinFixture struct {
	server *httptest.Server

	sharePayload map[string]interface{}
	meCalled     bool
	uploadedPut  bool
}

func newLinkedInFixture(t *testing.T, withImage bool) *linkedinFixture {
	t.Helper()
	f := &linkedinFixture{}

	mux := http.NewServeMux()

	mux.HandleFunc("/v2/me", func(w http.ResponseWriter, r *http.Request) {
		f.meCalled = true
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"id":"abc123"}`)
	})

	mux.HandleFunc("/v2/ugcPosts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Restli-Protocol-Version") != "2.0.0" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&f.sharePayload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("/v2/assets", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"value":{"asset":"urn:li:digitalmediaAsset:xyz",
			"uploadMechanism":{"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest":
			{"uploadUrl":"%s/upload"}}}}`, f.server.URL)
	})

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		f.uploadedPut = r.Method == "PUT"
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		if withImage {
			fmt.Fprintf(w, `<html><head><meta property="og:image" content="%s/image.png"/></head><body>text</body></html>`, f.server.URL)
			return
		}
		fmt.Fprint(w, `<html><head></head><body>text</body></html>`)
	})

	mux.HandleFunc("/image.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake png bytes"))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func newLinkedInTestChannel(f *linkedinFixture, creds *secrets.LinkedInCredentials) *LinkedInChannel {
	channel := NewLinkedInChannel(creds, f.server.Client(), "test-agent")
	channel.apiURL = f.server.URL
	return channel
}

func TestLinkedInChannel_PostWithImage(t *testing.T) {
	f := newLinkedInFixture(t, true)
	channel := newLinkedInTestChannel(f, &secrets.LinkedInCredentials{AccessToken: "tok", AuthorURN: "urn:li:person:me"})

	post := Post{Text: "summary text", Link: f.server.URL + "/article", Title: "Article Title"}
	if err := channel.Post(context.Background(), post); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if f.meCalled {
		t.Error("Identity endpoint must not be called when the URN is configured")
	}
	if !f.uploadedPut {
		t.Error("Expected the preview image to be uploaded")
	}

	if f.sharePayload["author"] != "urn:li:person:me" {
		t.Errorf("Expected configured author URN, got %v", f.sharePayload["author"])
	}
	content := f.sharePayload["specificContent"].(map[string]interface{})["com.linkedin.ugc.ShareContent"].(map[string]interface{})
	if content["shareMediaCategory"] != "ARTICLE" {
		t.Errorf("Expected ARTICLE share, got %v", content["shareMediaCategory"])
	}
	media := content["media"].([]interface{})[0].(map[string]interface{})
	if media["media"] != "urn:li:digitalmediaAsset:xyz" {
		t.Errorf("Expected uploaded asset in media, got %v", media)
	}
	if media["originalUrl"] != post.Link {
		t.Errorf("Expected article link in media, got %v", media["originalUrl"])
	}
}

func TestLinkedInChannel_ResolvesAuthorViaIdentity(t *testing.T) {
	f := newLinkedInFixture(t, false)
	channel := newLinkedInTestChannel(f, &secrets.LinkedInCredentials{AccessToken: "tok"})

	post := Post{Text: "summary", Link: f.server.URL + "/article", Title: "Title"}
	if err := channel.Post(context.Background(), post); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !f.meCalled {
		t.Error("Expected identity endpoint lookup")
	}
	if f.sharePayload["author"] != "urn:li:person:abc123" {
		t.Errorf("Expected resolved author URN, got %v", f.sharePayload["author"])
	}
}

func TestLinkedInChannel_PostWithoutImage(t *testing.T) {
	f := newLinkedInFixture(t, false)
	channel := newLinkedInTestChannel(f, &secrets.LinkedInCredentials{AccessToken: "tok", AuthorURN: "urn:li:person:me"})

	post := Post{Text: "summary", Link: f.server.URL + "/article", Title: "Title"}
	if err := channel.Post(context.Background(), post); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if f.uploadedPut {
		t.Error("No upload expected when the page declares no og:image")
	}
	content := f.sharePayload["specificContent"].(map[string]interface{})["com.linkedin.ugc.ShareContent"].(map[string]interface{})
	media := content["media"].([]interface{})[0].(map[string]interface{})
	if _, ok := media["media"]; ok {
		t.Errorf("Expected no asset reference in media, got %v", media)
	}
}

func TestLinkedInChannel_ImageFailureDegradesToText(t *testing.T) {
	// The article page 404s so image resolution fails entirely; the share
	// must still go out.
	f := newLinkedInFixture(t, false)
	channel := newLinkedInTestChannel(f, &secrets.LinkedInCredentials{AccessToken: "tok", AuthorURN: "urn:li:person:me"})

	post := Post{Text: "summary", Link: f.server.URL + "/missing-article", Title: "Title"}
	if err := channel.Post(context.Background(), post); err != nil {
		t.Fatalf("Image resolution failure must not block the share: %v", err)
	}

	if f.sharePayload == nil {
		t.Fatal("Expected the share to be posted")
	}
}

func TestLinkedInChannel_ShareRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	channel := NewLinkedInChannel(&secrets.LinkedInCredentials{AccessToken: "bad", AuthorURN: "urn:li:person:me"}, server.Client(), "test-agent")
	channel.apiURL = server.URL

	err := channel.Post(context.Background(), Post{Text: "summary", Title: "Title"})
	if err == nil {
		t.Fatal("Expected error for rejected share")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}
