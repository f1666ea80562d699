package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newHeuristicForTest() *HeuristicStrategy {
	return &HeuristicStrategy{
		timeout:       5 * time.Second,
		visitHomepage: false,
		maxDelay:      0,
	}
}

func TestHeuristicStrategy_ArticleSelector(t *testing.T) {
	body := strings.Repeat("Real article content here. ", 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><script>var x = 1;</script></head>
			<body><nav>menu menu menu</nav>
			<article>%s</article>
			<footer>copyright</footer></body></html>`, body)
	}))
	defer server.Close()

	strategy := newHeuristicForTest()
	text, err := strategy.Attempt(context.Background(), server.URL+"/post")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(text, "Real article content") {
		t.Errorf("Expected article content, got %q", text)
	}
	if strings.Contains(text, "menu") || strings.Contains(text, "copyright") || strings.Contains(text, "var x") {
		t.Errorf("Boilerplate must be stripped, got %q", text)
	}
}

func TestHeuristicStrategy_ContentClassFallback(t *testing.T) {
	body := strings.Repeat("Paragraphs of body text. ", 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<div class="sidebar">tiny</div>
			<div class="entry-content">%s</div>
			</body></html>`, body)
	}))
	defer server.Close()

	strategy := newHeuristicForTest()
	text, err := strategy.Attempt(context.Background(), server.URL+"/post")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(text, "Paragraphs of body text") {
		t.Errorf("Expected content-region text, got %q", text)
	}
}

func TestHeuristicStrategy_WholeBodyFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>just a paragraph with no recognized region</p></body></html>`)
	}))
	defer server.Close()

	strategy := newHeuristicForTest()
	text, err := strategy.Attempt(context.Background(), server.URL+"/post")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(text, "just a paragraph") {
		t.Errorf("Expected whole-body fallback text, got %q", text)
	}
}

func TestHeuristicStrategy_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	strategy := newHeuristicForTest()
	if _, err := strategy.Attempt(context.Background(), server.URL+"/post"); err == nil {
		t.Error("Expected error for HTTP 403")
	}
}

func TestHeuristicStrategy_BrowserHeadersSent(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, "<html><body><article>"+strings.Repeat("text ", 50)+"</article></body></html>")
	}))
	defer server.Close()

	strategy := newHeuristicForTest()
	if _, err := strategy.Attempt(context.Background(), server.URL+"/post"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Errorf("Expected a browser user agent, got %q", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("Expected a browser accept header, got %q", gotAccept)
	}
}

func TestHeuristicStrategy_HomepagePreVisit(t *testing.T) {
	var paths []string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		fmt.Fprint(w, "<html><body>home</body></html>")
	})
	mux.HandleFunc("/post", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fmt.Fprint(w, "<html><body><article>"+strings.Repeat("text ", 50)+"</article></body></html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	strategy := &HeuristicStrategy{timeout: 5 * time.Second, visitHomepage: true, maxDelay: 0}
	if _, err := strategy.Attempt(context.Background(), server.URL+"/post"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(paths) != 2 || paths[0] != "/" || paths[1] != "/post" {
		t.Errorf("Expected homepage pre-visit before article fetch, got %v", paths)
	}
}
