package omdb

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/omdbq/credentials"
)

const testAPIKey = "test-key"

var supermanPayload = map[string]any{
	"Title":    "Superman",
	"Year":     "1978",
	"Rated":    "PG",
	"Released": "15 Dec 1978",
	"Runtime":  "143 min",
	"Genre":    "Action, Adventure, Sci-Fi",
	"Director": "Richard Donner",
	"Writer":   "Jerry Siegel, Joe Shuster, Mario Puzo",
	"Actors":   "Christopher Reeve, Margot Kidder, Gene Hackman",
	"Plot":     "An alien orphan is sent from his dying planet to Earth.",
	"Language": "English",
	"Country":  "United States, United Kingdom",
	"Awards":   "Nominated for 3 Oscars.",
	"Poster":   "https://m.media-amazon.com/images/superman.jpg",
	"Ratings": []any{
		map[string]any{"Source": "Internet Movie Database", "Value": "7.4/10"},
		map[string]any{"Source": "Rotten Tomatoes", "Value": "94%"},
	},
	"Metascore":  "82",
	"imdbRating": "7.4",
	"imdbVotes":  "189,453",
	"imdbID":     "tt0078346",
	"Type":       "movie",
	"DVD":        "N/A",
	"BoxOffice":  "$134,218,018",
	"Production": "N/A",
	"Website":    "N/A",
	"Response":   "True",
}

var batman66Payload = map[string]any{
	"Title":    "Batman: The Movie",
	"Year":     "1966",
	"Released": "30 Jul 1966",
	"Runtime":  "105 min",
	"imdbID":   "tt0060153",
	"Type":     "movie",
	"Response": "True",
}

var batmanSeriesPayload = map[string]any{
	"Title":        "Batman",
	"Year":         "1966–1968",
	"Released":     "12 Jan 1966",
	"Runtime":      "25 min",
	"totalSeasons": "3",
	"imdbID":       "tt0059968",
	"Type":         "series",
	"Ratings":      []any{},
	"Response":     "True",
}

// fakeOMDb serves a small, deterministic slice of the OMDb API
type fakeOMDb struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	requests []map[string]string
	// search term -> total results
	totals map[string]int
	// pages that answer with an HTTP error
	failPages map[int]int
}

func newFakeOMDb(t *testing.T) *fakeOMDb {
	t.Helper()
	f := &fakeOMDb{
		t:         t,
		totals:    map[string]int{"Batman": 23, "Superman": 10, "Nothing": 0},
		failPages: map[int]int{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeOMDb) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := make(map[string]string, len(q))
	for k := range q {
		params[k] = q.Get(k)
	}

	f.mu.Lock()
	f.requests = append(f.requests, params)
	f.mu.Unlock()

	if params["apikey"] != testAPIKey {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]any{"Response": "False", "Error": "Invalid API key!"})
		return
	}

	switch {
	case params["i"] != "":
		switch params["i"] {
		case "tt0078346":
			writeJSON(w, supermanPayload)
		case "tt0059968":
			writeJSON(w, batmanSeriesPayload)
		default:
			writeJSON(w, map[string]any{"Response": "False", "Error": "Incorrect IMDb ID."})
		}
	case params["t"] != "":
		switch {
		case params["t"] == "Batman" && params["y"] == "1966":
			writeJSON(w, batman66Payload)
		case params["t"] == "Superman":
			writeJSON(w, supermanPayload)
		default:
			writeJSON(w, map[string]any{"Response": "False", "Error": "Movie not found!"})
		}
	case params["s"] != "":
		f.handleSearch(w, params)
	default:
		writeJSON(w, map[string]any{"Response": "False", "Error": "No API key provided."})
	}
}

func (f *fakeOMDb) handleSearch(w http.ResponseWriter, params map[string]string) {
	page, _ := strconv.Atoi(params["page"])
	if page < 1 {
		page = 1
	}
	if status, ok := f.failPages[page]; ok {
		w.WriteHeader(status)
		return
	}

	total, ok := f.totals[params["s"]]
	if !ok {
		writeJSON(w, map[string]any{"Response": "False", "Error": "Too many results."})
		return
	}
	if total == 0 {
		writeJSON(w, map[string]any{"Response": "False", "Error": "Movie not found!"})
		return
	}

	start := (page - 1) * PageSize
	end := min(start+PageSize, total)
	var items []any
	for i := start; i < end; i++ {
		items = append(items, map[string]any{
			"Title":  fmt.Sprintf("%s %02d", params["s"], i+1),
			"Year":   strconv.Itoa(1980 + i),
			"imdbID": fmt.Sprintf("tt%07d", i+1),
			"Type":   "movie",
			"Poster": "N/A",
		})
	}
	if items == nil {
		items = []any{}
	}

	writeJSON(w, map[string]any{
		"Search":       items,
		"totalResults": strconv.Itoa(total),
		"Response":     "True",
	})
}

// pagesRequested returns the search pages requested so far, in order
func (f *fakeOMDb) pagesRequested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var pages []int
	for _, req := range f.requests {
		if req["s"] == "" {
			continue
		}
		n, _ := strconv.Atoi(req["page"])
		pages = append(pages, n)
	}
	return pages
}

func (f *fakeOMDb) lastRequest() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeOMDb) client(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(zerolog.Nop(), WithBaseURL(f.server.URL))
	require.NoError(t, err)
	return c
}

func (f *fakeOMDb) service(t *testing.T, concurrency int) *Service {
	t.Helper()
	client := f.client(t)
	logger := zerolog.Nop()
	return NewService(
		NewBuilder(credentials.Static(testAPIKey), logger),
		client,
		NewNormalizer(logger),
		NewAggregator(client, logger, WithConcurrency(concurrency)),
	)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
