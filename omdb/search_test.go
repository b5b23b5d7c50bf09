package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSender answers search pages from memory
type stubSender struct {
	mu    sync.Mutex
	total int
	fail  map[int]error
	pages []int
}

func (s *stubSender) Send(ctx context.Context, params Params) (RawResponse, error) {
	page := params.Page()

	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.mu.Unlock()

	if err := s.fail[page]; err != nil {
		return nil, err
	}
	return searchPage(page, s.total), nil
}

func searchPage(page, total int) RawResponse {
	var items []any
	for i := (page - 1) * PageSize; i < min(page*PageSize, total); i++ {
		items = append(items, map[string]any{
			"Title":  fmt.Sprintf("Title %03d", i),
			"Year":   strconv.Itoa(2000 + i%20),
			"imdbID": fmt.Sprintf("tt%07d", i),
			"Type":   "movie",
			"Poster": nil,
		})
	}
	return RawResponse{
		"Search":       items,
		"totalResults": strconv.Itoa(total),
		"Response":     "True",
	}
}

func TestPageCursor(t *testing.T) {
	tests := []struct {
		total int
		pages int
	}{
		{0, 0},
		{1, 1},
		{10, 1},
		{11, 2},
		{23, 3},
		{100, 10},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.total), func(t *testing.T) {
			c := NewPageCursor(1, tt.total)
			assert.Equal(t, tt.pages, c.TotalPages)

			var visited []int
			for page, ok := c.Next(); ok; page, ok = c.Next() {
				visited = append(visited, page)
			}
			assert.Len(t, visited, max(tt.pages-1, 0))
		})
	}
}

func TestAggregator_Completeness(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		for _, total := range []int{1, 10, 11, 23, 95} {
			t.Run(fmt.Sprintf("concurrency=%d/total=%d", concurrency, total), func(t *testing.T) {
				sender := &stubSender{total: total}
				agg := NewAggregator(sender, zerolog.Nop(), WithConcurrency(concurrency))

				params := Params{"s": "x", "page": "1"}
				records, err := agg.Aggregate(context.Background(), searchPage(1, total), params, false)
				require.NoError(t, err)

				assert.Len(t, records, total)
				wantPages := (total + PageSize - 1) / PageSize
				assert.Len(t, sender.pages, wantPages-1, "first page must not be refetched")

				for _, rec := range records {
					require.NotNil(t, rec.TotalResults)
					assert.Equal(t, total, *rec.TotalResults)
					require.NotNil(t, rec.StartYear)
				}
				assert.True(t, sort.SliceIsSorted(records, func(i, j int) bool {
					return records[i].Title < records[j].Title
				}))
			})
		}
	}
}

func TestAggregator_PinnedPage(t *testing.T) {
	sender := &stubSender{total: 95}
	agg := NewAggregator(sender, zerolog.Nop())

	params := Params{"s": "x", "page": "3"}
	records, err := agg.Aggregate(context.Background(), searchPage(3, 95), params, true)
	require.NoError(t, err)

	assert.Len(t, records, PageSize)
	assert.Empty(t, sender.pages)
	assert.Equal(t, "Title 020", records[0].Title)
}

func TestAggregator_FailurePropagates(t *testing.T) {
	boom := &TransportError{StatusCode: http.StatusBadGateway}

	for _, concurrency := range []int{1, 3} {
		t.Run(strconv.Itoa(concurrency), func(t *testing.T) {
			sender := &stubSender{total: 45, fail: map[int]error{3: boom}}
			agg := NewAggregator(sender, zerolog.Nop(), WithConcurrency(concurrency))

			records, err := agg.Aggregate(context.Background(), searchPage(1, 45), Params{"s": "x", "page": "1"}, false)
			assert.Nil(t, records)

			var transportErr *TransportError
			require.True(t, errors.As(err, &transportErr))
			assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
		})
	}
}

func TestAggregator_EmptyAndMalformed(t *testing.T) {
	agg := NewAggregator(&stubSender{}, zerolog.Nop())

	records, err := agg.Aggregate(context.Background(), RawResponse{"Search": nil, "totalResults": "0", "Response": "True"}, Params{"s": "x"}, false)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = agg.Aggregate(context.Background(), RawResponse{"Search": "nope", "totalResults": "1"}, Params{"s": "x"}, false)
	assert.ErrorIs(t, err, ErrUnexpectedPayload)

	_, err = agg.Aggregate(context.Background(), RawResponse{"totalResults": "many"}, Params{"s": "x"}, false)
	assert.ErrorIs(t, err, ErrUnexpectedPayload)
}

func TestSortRecords(t *testing.T) {
	records := []Record{
		{Title: "Batman", Type: MediaTypeSeries, DisplayYear: "2004–2008"},
		{Title: "Batman", Type: MediaTypeMovie, DisplayYear: "1989"},
		{Title: "Alpha", Type: MediaTypeMovie, DisplayYear: "2000"},
		{Title: "Batman", Type: MediaTypeSeries, DisplayYear: "1966–1968"},
		{Title: "Batman", Type: MediaTypeMovie, DisplayYear: "1966"},
	}

	SortRecords(records)

	var got []string
	for _, r := range records {
		got = append(got, fmt.Sprintf("%s|%s|%s", r.Title, r.Type, r.DisplayYear))
	}
	assert.Equal(t, []string{
		"Alpha|movie|2000",
		"Batman|movie|1966",
		"Batman|movie|1989",
		"Batman|series|1966–1968",
		"Batman|series|2004–2008",
	}, got)
}

func TestSortRecords_YearComparedAsText(t *testing.T) {
	records := []Record{
		{Title: "X", Type: MediaTypeMovie, DisplayYear: "999"},
		{Title: "X", Type: MediaTypeMovie, DisplayYear: "1000"},
	}
	SortRecords(records)
	assert.Equal(t, "1000", records[0].DisplayYear)
}
