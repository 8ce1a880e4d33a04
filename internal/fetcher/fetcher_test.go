package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("terms of use body"))
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(body) != "terms of use body" {
		t.Errorf("Unexpected body: %q", body)
	}
	if gotUA != userAgent {
		t.Errorf("Expected identifying User-Agent, got %q", gotUA)
	}
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 in error, got %d", fe.StatusCode)
	}
	if fe.URL != srv.URL {
		t.Errorf("Expected error to carry URL %s, got %s", srv.URL, fe.URL)
	}
}

func TestFetchFollowsOneRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved content"))
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusMovedPermanently)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(5 * time.Second)
	body, err := f.Fetch(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(body) != "moved content" {
		t.Errorf("Expected redirect target body, got %q", body)
	}
}

func TestFetchStopsAfterOneRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/b", http.StatusFound)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/c", http.StatusFound)
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("too deep"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL+"/a")
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("Expected *Error for a two-hop chain, got %v", err)
	}
	if fe.StatusCode != http.StatusFound {
		t.Errorf("Expected the second redirect's status 302, got %d", fe.StatusCode)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	f := New(50 * time.Millisecond)
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("Expected *Error on timeout, got %v", err)
	}
	if !fe.Timeout {
		t.Errorf("Expected Timeout flag set, got %+v", fe)
	}
}
