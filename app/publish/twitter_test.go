package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/feedpost/feedpost/app/secrets"
)

func testTwitterCreds() *secrets.TwitterCredentials {
	return &secrets.TwitterCredentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		AccessToken:    "at",
		AccessSecret:   "as",
	}
}

func TestTwitterChannel_Post(t *testing.T) {
	var gotBody map[string]string
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"1"}}`))
	}))
	defer server.Close()

	channel := NewTwitterChannel(testTwitterCreds())
	channel.apiURL = server.URL

	if err := channel.Post(context.Background(), Post{Text: "hello world https://example.com/post"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotBody["text"] != "hello world https://example.com/post" {
		t.Errorf("Expected tweet text in payload, got %v", gotBody)
	}
	if !strings.HasPrefix(gotAuth, "OAuth ") {
		t.Errorf("Expected OAuth1 signed request, got authorization %q", gotAuth)
	}
	if !strings.Contains(gotAuth, `oauth_consumer_key="ck"`) {
		t.Errorf("Expected consumer key in OAuth header, got %q", gotAuth)
	}
}

func TestTwitterChannel_PostRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"title":"Unauthorized"}`))
	}))
	defer server.Close()

	channel := NewTwitterChannel(testTwitterCreds())
	channel.apiURL = server.URL

	err := channel.Post(context.Background(), Post{Text: "hello"})
	if err == nil {
		t.Fatal("Expected error for rejected tweet")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}
