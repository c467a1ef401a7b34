package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blueprints/internal/services"
)

func TestFetchReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	data, err := NewFetcher(nil, time.Second).Fetch(context.Background(), server.URL+"/preview.jpg")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestFetchNonSuccessCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no such attachment"))
	}))
	defer server.Close()

	_, err := NewFetcher(nil, time.Second).Fetch(context.Background(), server.URL+"/missing.jpg")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Status != http.StatusNotFound || fetchErr.Body != "no such attachment" {
		t.Fatalf("unexpected fetch error %+v", fetchErr)
	}
	if !errors.Is(err, services.ErrFetch) {
		t.Fatal("expected ErrFetch classification")
	}
}

func TestFetchTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewFetcher(nil, 50*time.Millisecond).Fetch(context.Background(), server.URL)
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestFetchFilesExpandsArchives(t *testing.T) {
	archive := buildZip(t, map[string]string{"Fonts/Bold.ttf": "bold", "Fonts/Light.ttf": "light"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/fonts.zip":
			_, _ = w.Write(archive)
		case "/files/Title Font.otf":
			_, _ = w.Write([]byte("otf"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	files, err := NewFetcher(nil, time.Second).FetchFiles(context.Background(), []string{
		server.URL + "/files/fonts.zip",
		server.URL + "/files/Title%20Font.otf",
	})
	if err != nil {
		t.Fatalf("FetchFiles returned error: %v", err)
	}
	got := names(files)
	want := []string{"Bold.ttf", "Light.ttf", "Title Font.otf"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFetchFilesFailsWholeBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.ttf", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	server := httptest.NewServer(mux)
	defer server.Close()

	files, err := NewFetcher(nil, time.Second).FetchFiles(context.Background(), []string{server.URL + "/ok.ttf", server.URL + "/gone.ttf"})
	if err == nil || files != nil {
		t.Fatalf("expected failure with no files, got %v %v", files, err)
	}
}

func TestNameFromURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com/a/b/font.ttf":        "font.ttf",
		"https://example.com/a/My%20Font.ttf?x=1": "My Font.ttf",
		"https://example.com/":                    "",
		"https://example.com":                     "",
	}
	for in, want := range tests {
		if got := NameFromURL(in); got != want {
			t.Fatalf("NameFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}
