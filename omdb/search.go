package omdb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrency caps parallel page fetches
const MaxConcurrency = 10

// PageCursor tracks progress through a paginated search
type PageCursor struct {
	Page       int
	TotalPages int
}

// NewPageCursor creates a cursor positioned on page for totalResults matches
func NewPageCursor(page, totalResults int) PageCursor {
	if page < 1 {
		page = 1
	}
	return PageCursor{
		Page:       page,
		TotalPages: (totalResults + PageSize - 1) / PageSize,
	}
}

// HasMorePages checks if there are more pages to fetch
func (pc PageCursor) HasMorePages() bool {
	return pc.Page < pc.TotalPages
}

// Next advances the cursor and returns the new page, or false when exhausted
func (pc *PageCursor) Next() (int, bool) {
	if !pc.HasMorePages() {
		return 0, false
	}
	pc.Page++
	return pc.Page, true
}

// AggregatorOption configures an Aggregator
type AggregatorOption func(*Aggregator)

// WithConcurrency fetches up to n pages at once. Output order is unchanged.
func WithConcurrency(n int) AggregatorOption {
	return func(a *Aggregator) {
		a.concurrency = min(max(n, 1), MaxConcurrency)
	}
}

// Aggregator collects every page of a search into one ordered record set
type Aggregator struct {
	sender      Sender
	logger      zerolog.Logger
	concurrency int
}

// NewAggregator creates a new Aggregator that fetches extra pages through sender
func NewAggregator(sender Sender, logger zerolog.Logger, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		sender:      sender,
		logger:      logger,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate returns the records of first plus, unless the page was pinned, the
// records of every following page. Any failed page fails the whole call.
func (a *Aggregator) Aggregate(ctx context.Context, first RawResponse, params Params, pageWasExplicit bool) ([]Record, error) {
	records, total, err := parseSearchPage(first)
	if err != nil {
		return nil, err
	}

	cursor := NewPageCursor(params.Page(), total)

	a.logger.Debug().
		Int("total_results", total).
		Int("total_pages", cursor.TotalPages).
		Bool("page_pinned", pageWasExplicit).
		Msg("Aggregating search results")

	if !pageWasExplicit && cursor.HasMorePages() {
		var pages []int
		for page, ok := cursor.Next(); ok; page, ok = cursor.Next() {
			pages = append(pages, page)
		}

		rest, err := a.fetchPages(ctx, params, pages)
		if err != nil {
			return nil, err
		}
		for _, pageRecords := range rest {
			records = append(records, pageRecords...)
		}
	}

	for i := range records {
		n := total
		records[i].TotalResults = &n
	}

	SortRecords(records)
	return records, nil
}

// fetchPages fetches pages and returns their records indexed like pages
func (a *Aggregator) fetchPages(ctx context.Context, params Params, pages []int) ([][]Record, error) {
	results := make([][]Record, len(pages))

	if a.concurrency <= 1 {
		for i, page := range pages {
			recs, err := a.fetchPage(ctx, params, page)
			if err != nil {
				return nil, err
			}
			results[i] = recs
		}
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, page := range pages {
		g.Go(func() error {
			recs, err := a.fetchPage(ctx, params, page)
			if err != nil {
				return err
			}
			// each goroutine owns its slot
			results[i] = recs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Aggregator) fetchPage(ctx context.Context, params Params, page int) ([]Record, error) {
	raw, err := a.sender.Send(ctx, params.WithPage(page))
	if err != nil {
		return nil, err
	}
	records, _, err := parseSearchPage(raw)
	if err != nil {
		return nil, err
	}

	a.logger.Debug().
		Int("page", page).
		Int("count", len(records)).
		Msg("Retrieved search page")

	return records, nil
}

// parseSearchPage extracts the result list and total count from a search payload
func parseSearchPage(raw RawResponse) ([]Record, int, error) {
	total, err := parseTotal(raw["totalResults"])
	if err != nil {
		return nil, 0, err
	}

	// an empty list was collapsed to the missing marker
	if raw.IsMissing("Search") {
		return nil, total, nil
	}
	items, ok := raw["Search"].([]any)
	if !ok {
		return nil, 0, fmt.Errorf("%w: Search is %T", ErrUnexpectedPayload, raw["Search"])
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, 0, fmt.Errorf("%w: search entry is %T", ErrUnexpectedPayload, item)
		}
		records = append(records, searchRecord(m))
	}
	return records, total, nil
}

func parseTotal(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("%w: totalResults %q", ErrUnexpectedPayload, t)
		}
		return n, nil
	case float64:
		return int(t), nil
	}
	return 0, fmt.Errorf("%w: totalResults is %T", ErrUnexpectedPayload, v)
}

// SortRecords orders records by title, media type and display year. The year
// is compared as text, so "2015-" sorts before "2015-2019" and ranges sort lexically.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.DisplayYear < b.DisplayYear
	})
}
