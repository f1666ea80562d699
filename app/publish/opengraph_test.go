package publish

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolvePreviewImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta property="og:title" content="Title"/>
			<meta property="og:image" content="https://cdn.example.com/hero.png"/>
			<meta property="og:image" content="https://cdn.example.com/second.png"/>
			</head><body></body></html>`)
	}))
	defer server.Close()

	image, err := resolvePreviewImage(context.Background(), server.Client(), server.URL, "test-agent")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if image != "https://cdn.example.com/hero.png" {
		t.Errorf("Expected first og:image, got %q", image)
	}
}

func TestResolvePreviewImage_NoImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Plain</title></head><body></body></html>`)
	}))
	defer server.Close()

	image, err := resolvePreviewImage(context.Background(), server.Client(), server.URL, "test-agent")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if image != "" {
		t.Errorf("Expected empty image URL, got %q", image)
	}
}

func TestResolvePreviewImage_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := resolvePreviewImage(context.Background(), server.Client(), server.URL, "test-agent"); err == nil {
		t.Error("Expected error for HTTP 404")
	}
}
