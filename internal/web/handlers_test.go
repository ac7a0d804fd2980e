package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chatsnap/chatsnap/internal/feed"
)

// stubClient is an in-memory transport for handler tests.
type stubClient struct {
	sources  []feed.Source
	messages map[string][]feed.Message
	listErr  error
}

func (c *stubClient) ListSources(_ context.Context) ([]feed.Source, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.sources, nil
}

func (c *stubClient) RecentMessages(_ context.Context, src feed.Source, limit int) ([]feed.Message, error) {
	msgs := c.messages[src.Ref]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func testServer(client feed.Client) *http.Server {
	agg := feed.NewAggregator(client, feed.Options{}, nil)
	return NewServer(agg, "test", "127.0.0.1", 0)
}

func get(t *testing.T, srv *http.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func defaultClient() *stubClient {
	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	return &stubClient{
		sources: []feed.Source{
			{Ref: "a", Name: "Alice", Kind: feed.KindDirect},
			{Ref: "n", Name: "News", Kind: feed.KindBroadcast},
		},
		messages: map[string][]feed.Message{
			"a": {{ID: 1, Timestamp: ts, Text: "hello *world*", Sender: feed.PersonSender{FirstName: "Alice"}}},
			"n": {{ID: 2, Timestamp: ts.Add(time.Minute), Sender: feed.TitleSender{Title: "News"},
				Attachment: &feed.Attachment{Type: "MessageMediaPhoto"}}},
		},
	}
}

func TestHandleMessages(t *testing.T) {
	rec := get(t, testServer(defaultClient()), "/messages")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Alice") {
		t.Error("body missing sender name")
	}
	if !strings.Contains(body, "<em>world</em>") {
		t.Error("body missing markdown-rendered content")
	}
	if !strings.Contains(body, "&lt;Media: Photo&gt;") {
		t.Error("body missing media sentinel")
	}
}

func TestHandleMessages_CategoryFilter(t *testing.T) {
	rec := get(t, testServer(defaultClient()), "/messages?category=channel")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "hello") {
		t.Error("private message leaked into channel snapshot")
	}
}

func TestHandleMessages_BadCategory(t *testing.T) {
	rec := get(t, testServer(defaultClient()), "/messages?category=bogus")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unknown category") {
		t.Error("error page missing message")
	}
}

func TestHandleMessages_BadLimit(t *testing.T) {
	rec := get(t, testServer(defaultClient()), "/messages?limit=abc")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleMessages_TransportError(t *testing.T) {
	client := &stubClient{listErr: fmt.Errorf("gateway down")}
	rec := get(t, testServer(client), "/messages")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestHandleSources(t *testing.T) {
	rec := get(t, testServer(defaultClient()), "/sources?category=channel")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "News") {
		t.Error("body missing channel source")
	}
	if strings.Contains(body, "Alice") {
		t.Error("direct source leaked into channel listing")
	}
}

func TestRootRedirects(t *testing.T) {
	rec := get(t, testServer(defaultClient()), "/")

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/messages" {
		t.Errorf("Location = %q, want /messages", loc)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := get(t, testServer(defaultClient()), "/messages")

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options header")
	}
}
