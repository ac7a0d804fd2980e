package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

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

func testAggregator(client feed.Client) *feed.Aggregator {
	return feed.NewAggregator(client, feed.Options{}, nil)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func TestHandleFetch(t *testing.T) {
	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	client := &stubClient{
		sources: []feed.Source{{Ref: "a", Name: "Alice", Kind: feed.KindDirect}},
		messages: map[string][]feed.Message{
			"a": {{ID: 1, Timestamp: ts, Text: "hello", Sender: feed.PersonSender{FirstName: "Alice"}}},
		},
	}
	h := NewHandlers(testAggregator(client))

	res, err := h.HandleFetch(context.Background(), callRequest(map[string]any{
		"category": "private",
		"limit":    5,
	}))
	if err != nil {
		t.Fatalf("HandleFetch failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var out feed.FetchOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("Count = %d, want 1", out.Count)
	}
	if out.Items[0].Sender != "Alice" {
		t.Errorf("Sender = %q, want Alice", out.Items[0].Sender)
	}
}

func TestHandleFetch_DefaultLimit(t *testing.T) {
	client := &stubClient{sources: []feed.Source{}}
	h := NewHandlers(testAggregator(client))

	res, err := h.HandleFetch(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleFetch failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
}

func TestHandleFetch_InvalidCategory(t *testing.T) {
	h := NewHandlers(testAggregator(&stubClient{}))

	res, err := h.HandleFetch(context.Background(), callRequest(map[string]any{
		"category": "bogus",
	}))
	if err != nil {
		t.Fatalf("HandleFetch failed: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}

	var payload struct {
		Error struct {
			Code   string `json:"code"`
			Status int    `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &payload); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	if payload.Error.Code != "INVALID_REQUEST" {
		t.Errorf("error code = %q, want INVALID_REQUEST", payload.Error.Code)
	}
	if payload.Error.Status != 400 {
		t.Errorf("error status = %d, want 400", payload.Error.Status)
	}
}

func TestHandleFetch_TransportError(t *testing.T) {
	client := &stubClient{listErr: fmt.Errorf("network down")}
	h := NewHandlers(testAggregator(client))

	res, err := h.HandleFetch(context.Background(), callRequest(map[string]any{"limit": 3}))
	if err != nil {
		t.Fatalf("HandleFetch failed: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &payload); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	if payload.Error.Code != "TRANSPORT" {
		t.Errorf("error code = %q, want TRANSPORT", payload.Error.Code)
	}
}

func TestHandleSources(t *testing.T) {
	client := &stubClient{
		sources: []feed.Source{
			{Ref: "a", Name: "Alice", Kind: feed.KindDirect},
			{Ref: "n", Name: "News", Kind: feed.KindBroadcast},
		},
	}
	h := NewHandlers(testAggregator(client))

	res, err := h.HandleSources(context.Background(), callRequest(map[string]any{
		"category": "channel",
	}))
	if err != nil {
		t.Fatalf("HandleSources failed: %v", err)
	}

	var out feed.SourcesOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if out.Count != 1 || out.Items[0].Name != "News" {
		t.Errorf("out = %+v, want only News", out)
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"messages_fetch", "bogus_tool"})
	if len(unknown) != 1 || unknown[0] != "bogus_tool" {
		t.Errorf("unknown = %v, want [bogus_tool]", unknown)
	}
}
