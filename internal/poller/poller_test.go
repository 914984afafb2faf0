package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/pings" {
			t.Errorf("path = %s, want /pings", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"dest":"8.8.8.8","status":"success","rtt":12}]`))
	}))
	defer srv.Close()

	p := New(srv.URL+"/pings", 0)
	data, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected exactly one request, got %d", hits.Load())
	}
	records, ok := data.Records()
	if !ok || len(records) != 1 {
		t.Fatalf("records = %v, ok = %v", records, ok)
	}
	if *records[0].Dest != "8.8.8.8" || *records[0].RTT != "12" {
		t.Errorf("unexpected record %+v", records[0])
	}
}

func TestFetchNonArrayIsNotAnError(t *testing.T) {
	for _, body := range []string{`{"dest":"x"}`, `null`, `42`, `"text"`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		data, err := New(srv.URL, 0).Fetch(context.Background())
		srv.Close()
		if err != nil {
			t.Errorf("body %s: unexpected error %v", body, err)
			continue
		}
		if _, ok := data.Records(); ok {
			t.Errorf("body %s: should not be treated as rows", body)
		}
	}
}

func TestFetchHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).Fetch(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if got := Message(err); got != "HTTP 500" {
		t.Errorf("message = %q, want HTTP 500", got)
	}
}

func TestFetchMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"dest":`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected parse failure")
	}
	if Message(err) == "" {
		t.Error("parse failure must carry a message")
	}
}

func TestFetchRejectsTrailingData(t *testing.T) {
	bodies := []string{
		`[{"dest":"a"}] <html>oops`,
		`[] []`,
		``,
	}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		data, err := New(srv.URL, 0).Fetch(context.Background())
		srv.Close()
		if err == nil {
			t.Errorf("body %q: got %s, want parse failure", body, data)
		}
	}
}

func TestFetchAcceptsTrailingWhitespace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[{\"dest\":\"a\"}]\n\n"))
	}))
	defer srv.Close()

	data, err := New(srv.URL, 0).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if records, ok := data.Records(); !ok || len(records) != 1 {
		t.Errorf("records = %d, ok=%v", len(records), ok)
	}
}

func TestFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url+"/pings", 0).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected transport failure")
	}
	if msg := Message(err); !strings.Contains(msg, "/pings") {
		t.Errorf("message %q should describe the failed request", msg)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, 50*time.Millisecond).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected timeout")
	}
}

type blankError struct{}

func (blankError) Error() string { return "" }

func TestMessageFallbacks(t *testing.T) {
	if got := Message(nil); got != "unknown error" {
		t.Errorf("Message(nil) = %q", got)
	}
	if got := Message(errors.New("dial tcp: refused")); got != "dial tcp: refused" {
		t.Errorf("Message = %q", got)
	}
	if got := Message(blankError{}); got == "" {
		t.Error("blank errors need a string form")
	}
}
