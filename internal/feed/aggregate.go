package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/chatsnap/chatsnap/internal/errors"
)

// Option defaults applied by NewAggregator.
const (
	DefaultFetchFloor  = 20
	DefaultConcurrency = 8
)

// Options tunes an Aggregator.
type Options struct {
	// FetchFloor is the minimum per-source fetch budget. The effective
	// budget for a run is max(limit, FetchFloor). The floor keeps a small
	// limit from starving the global top-K of candidates, but it is an
	// approximation: a source with more than the budget's worth of newer
	// messages can still push older messages from other sources into the
	// result.
	FetchFloor int

	// Concurrency bounds how many sources are fetched at once.
	Concurrency int

	// SourceTimeout bounds a single source's fetch. Zero disables it.
	// A timeout counts as that source's fetch failure.
	SourceTimeout time.Duration

	// Strict makes any single source's failure abort the whole run,
	// matching the original all-or-nothing behavior. Default is to log
	// and skip the source, continuing with partial results.
	Strict bool
}

// Aggregator produces point-in-time snapshots of recent activity across
// all conversation sources reachable through its client.
type Aggregator struct {
	client Client
	opts   Options
	logger *slog.Logger
}

// NewAggregator creates an aggregator. A nil logger discards progress output.
func NewAggregator(client Client, opts Options, logger *slog.Logger) *Aggregator {
	if opts.FetchFloor <= 0 {
		opts.FetchFloor = DefaultFetchFloor
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{client: client, opts: opts, logger: logger}
}

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	Category string // private | group | channel | all (default: all)
	Limit    int    // number of records to return
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	RunID    string   `json:"run_id"`
	Category string   `json:"category"`
	Count    int      `json:"count"`
	Skipped  []string `json:"skipped_sources,omitempty"`
	Items    []Record `json:"items"`
}

// Fetch aggregates the most recent messages across all admitted sources:
// enumerate, filter by category, fetch each admitted source under the
// per-source budget, merge, truncate to limit, normalize.
//
// A negative limit is rejected before any I/O. A zero limit returns an
// empty snapshot without touching the transport. Enumeration failure is
// fatal for the run; per-source fetch failures are skipped unless Strict.
func (a *Aggregator) Fetch(ctx context.Context, input FetchInput) (*FetchOutput, error) {
	cat, err := ParseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	if input.Limit < 0 {
		return nil, errors.NewInvalidRequest("limit must not be negative")
	}

	runID := ulid.Make().String()
	out := &FetchOutput{RunID: runID, Category: string(cat), Items: []Record{}}
	if input.Limit == 0 {
		return out, nil
	}

	logger := a.logger.With("run_id", runID)
	logger.Info("aggregating recent messages", "category", cat, "limit", input.Limit)

	msgs, skipped, err := a.collect(ctx, cat, input.Limit, logger)
	if err != nil {
		return nil, err
	}

	top := SelectRecent(msgs, input.Limit)
	records := make([]Record, 0, len(top))
	for _, m := range top {
		records = append(records, Normalize(m))
	}

	out.Items = records
	out.Count = len(records)
	out.Skipped = skipped
	logger.Info("snapshot complete", "candidates", len(msgs), "returned", len(records), "skipped_sources", len(skipped))
	return out, nil
}

// collect fetches all admitted sources concurrently. Each source writes
// into its own pre-allocated slot; the slots are merged only after every
// fetch has finished, so no ordering from the fetch phase leaks into the
// result and no lock is needed.
func (a *Aggregator) collect(ctx context.Context, cat Category, limit int, logger *slog.Logger) ([]Message, []string, error) {
	sources, err := a.client.ListSources(ctx)
	if err != nil {
		return nil, nil, errors.NewTransport("list conversations", err)
	}

	admitted := make([]Source, 0, len(sources))
	for _, src := range sources {
		if AdmitsSource(src, cat) {
			admitted = append(admitted, src)
		}
	}
	logger.Info("sources enumerated", "total", len(sources), "admitted", len(admitted))

	budget := max(limit, a.opts.FetchFloor)

	results := make([][]Message, len(admitted))
	failed := make([]string, len(admitted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for i, src := range admitted {
		g.Go(func() error {
			fctx := gctx
			if a.opts.SourceTimeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(gctx, a.opts.SourceTimeout)
				defer cancel()
			}

			msgs, err := a.client.RecentMessages(fctx, src, budget)
			if err != nil {
				if gctx.Err() != nil {
					// Run cancelled: abandon, all-or-nothing.
					return gctx.Err()
				}
				if a.opts.Strict {
					return errors.NewSourceFetch(src.Name, err)
				}
				logger.Warn("skipping source", "source", src.Name, "err", err)
				failed[i] = src.Name
				return nil
			}

			kept := make([]Message, 0, len(msgs))
			for _, m := range msgs {
				if !AdmitsMessage(m) {
					continue
				}
				if m.Timestamp.IsZero() {
					// Unordered messages cannot participate in the merge.
					logger.Debug("dropping message without timestamp", "source", src.Name, "message_id", m.ID)
					continue
				}
				if m.Kind == "" {
					m.Kind = src.Kind
				}
				kept = append(kept, m)
			}
			results[i] = kept
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var all []Message
	var skipped []string
	for i, r := range results {
		all = append(all, r...)
		if failed[i] != "" {
			skipped = append(skipped, failed[i])
		}
	}
	return all, skipped, nil
}

// SourcesInput contains parameters for the Sources operation.
type SourcesInput struct {
	Category string // private | group | channel | all (default: all)
}

// SourceInfo describes one admitted source.
type SourceInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Bot  bool   `json:"bot,omitempty"`
	Ref  string `json:"ref"`
}

// SourcesOutput contains the result of the Sources operation.
type SourcesOutput struct {
	Category string       `json:"category"`
	Count    int          `json:"count"`
	Items    []SourceInfo `json:"items"`
}

// Sources lists the conversation sources admitted by a category filter.
func (a *Aggregator) Sources(ctx context.Context, input SourcesInput) (*SourcesOutput, error) {
	cat, err := ParseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	sources, err := a.client.ListSources(ctx)
	if err != nil {
		return nil, errors.NewTransport("list conversations", err)
	}

	items := make([]SourceInfo, 0, len(sources))
	for _, src := range sources {
		if !AdmitsSource(src, cat) {
			continue
		}
		items = append(items, SourceInfo{
			Name: src.Name,
			Kind: string(src.Kind),
			Bot:  src.Bot,
			Ref:  src.Ref,
		})
	}

	return &SourcesOutput{Category: string(cat), Count: len(items), Items: items}, nil
}
