package web

import (
	"net/http"
	"strconv"

	"github.com/chatsnap/chatsnap/internal/errors"
	"github.com/chatsnap/chatsnap/internal/feed"
)

// Handlers contains HTTP route handlers for the digest UI.
type Handlers struct {
	agg      *feed.Aggregator
	renderer *Renderer
}

// HandleMessages handles GET /messages — one fresh snapshot per request.
func (h *Handlers) HandleMessages(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "all"
	}

	limit, err := parseIntParam(r, "limit", 25)
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	result, err := h.agg.Fetch(r.Context(), feed.FetchInput{
		Category: category,
		Limit:    limit,
	})
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	items := make([]MessageView, 0, len(result.Items))
	for _, rec := range result.Items {
		view := MessageView{
			Record:      rec,
			ContentHTML: renderMarkdown(rec.Content),
		}
		if rec.Date != nil {
			view.When = *rec.Date
		}
		items = append(items, view)
	}

	h.renderer.renderPage(w, "messages", MessagesPageData{
		PageData: PageData{
			Title:   "Recent Messages",
			Version: h.renderer.version,
			Nav:     "messages",
		},
		Category: result.Category,
		Limit:    limit,
		RunID:    result.RunID,
		Skipped:  result.Skipped,
		Items:    items,
	})
}

// HandleSources handles GET /sources — list admitted sources.
func (h *Handlers) HandleSources(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "all"
	}

	result, err := h.agg.Sources(r.Context(), feed.SourcesInput{Category: category})
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	h.renderer.renderPage(w, "sources", SourcesPageData{
		PageData: PageData{
			Title:   "Sources",
			Version: h.renderer.version,
			Nav:     "sources",
		},
		Category: result.Category,
		Items:    result.Items,
	})
}

// parseIntParam parses an integer query parameter with a default.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewInvalidRequest(name + " must be an integer")
	}
	return n, nil
}
