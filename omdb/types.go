package omdb

import (
	"strings"
	"time"
)

// PageSize is the fixed number of results the service returns per search page
const PageSize = 10

// RawResponse is one decoded response body. A key whose value is nil carries
// the missing marker: the service sent nothing usable for it.
type RawResponse map[string]any

// IsMissing reports whether key is absent or carries the missing marker
func (r RawResponse) IsMissing(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}

// String returns the string value of key, or "" when missing or not a string
func (r RawResponse) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// MediaType represents the kind of entity a record describes
type MediaType string

const (
	// MediaTypeMovie represents a movie
	MediaTypeMovie MediaType = "movie"
	// MediaTypeSeries represents a TV series
	MediaTypeSeries MediaType = "series"
	// MediaTypeEpisode represents a single TV episode
	MediaTypeEpisode MediaType = "episode"
	// MediaTypeGame represents a game
	MediaTypeGame MediaType = "game"
)

// IsMovie checks if the media type is a movie
func (mt MediaType) IsMovie() bool {
	return mt == MediaTypeMovie
}

// Rating is one per-source rating
type Rating struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// Record is one normalized movie, series or game.
//
// Search results only populate Title, DisplayYear, StartYear, ImdbID, Type,
// Poster and TotalResults. Lookups populate everything the service returned.
type Record struct {
	Title        string    `json:"title"`
	DisplayYear  string    `json:"displayYear"`
	StartYear    *int      `json:"startYear"`
	ImdbID       string    `json:"imdbId"`
	Type         MediaType `json:"type"`
	Poster       string    `json:"poster,omitempty"`
	TotalResults *int      `json:"totalResults,omitempty"`

	Rated        string     `json:"rated,omitempty"`
	Released     *time.Time `json:"released,omitempty"`
	DVD          *time.Time `json:"dvd,omitempty"`
	Runtime      *float64   `json:"runtime,omitempty"`
	Genres       []string   `json:"genres,omitempty"`
	Directors    []string   `json:"directors,omitempty"`
	Writers      []string   `json:"writers,omitempty"`
	Actors       []string   `json:"actors,omitempty"`
	Plot         string     `json:"plot,omitempty"`
	Languages    []string   `json:"languages,omitempty"`
	Countries    []string   `json:"countries,omitempty"`
	Awards       string     `json:"awards,omitempty"`
	Ratings      []Rating   `json:"ratings,omitempty"`
	Metascore    *float64   `json:"metascore,omitempty"`
	ImdbRating   *float64   `json:"imdbRating,omitempty"`
	ImdbVotes    *float64   `json:"imdbVotes,omitempty"`
	BoxOffice    *float64   `json:"boxOffice,omitempty"`
	TotalSeasons *float64   `json:"totalSeasons,omitempty"`
	Production   string     `json:"production,omitempty"`
	Website      string     `json:"website,omitempty"`

	// Extra holds fields this package does not know about, as received
	Extra map[string]any `json:"extra,omitempty"`

	Warnings []FieldCoercionWarning `json:"warnings,omitempty"`
}

// HasGenre checks if the record lists the genre, ignoring case
func (r *Record) HasGenre(genre string) bool {
	for _, g := range r.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// RatingFrom returns the rating reported by source, if any
func (r *Record) RatingFrom(source string) (string, bool) {
	for _, rating := range r.Ratings {
		if strings.EqualFold(rating.Source, source) {
			return rating.Value, true
		}
	}
	return "", false
}

// Map flattens the record into a map keyed by field name. Missing values are nil.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, 32+len(r.Extra))
	for k, v := range r.Extra {
		m[k] = v
	}

	m["Title"] = r.Title
	m["DisplayYear"] = r.DisplayYear
	m["StartYear"] = derefInt(r.StartYear)
	m["ImdbID"] = r.ImdbID
	m["Type"] = string(r.Type)
	m["Poster"] = nilIfEmpty(r.Poster)
	m["TotalResults"] = derefInt(r.TotalResults)
	m["Rated"] = nilIfEmpty(r.Rated)
	m["Released"] = derefTime(r.Released)
	m["DVD"] = derefTime(r.DVD)
	m["Runtime"] = derefFloat(r.Runtime)
	m["Genres"] = r.Genres
	m["Directors"] = r.Directors
	m["Writers"] = r.Writers
	m["Actors"] = r.Actors
	m["Plot"] = nilIfEmpty(r.Plot)
	m["Languages"] = r.Languages
	m["Countries"] = r.Countries
	m["Awards"] = nilIfEmpty(r.Awards)
	m["Metascore"] = derefFloat(r.Metascore)
	m["ImdbRating"] = derefFloat(r.ImdbRating)
	m["ImdbVotes"] = derefFloat(r.ImdbVotes)
	m["BoxOffice"] = derefFloat(r.BoxOffice)
	m["TotalSeasons"] = derefFloat(r.TotalSeasons)
	m["Production"] = nilIfEmpty(r.Production)
	m["Website"] = nilIfEmpty(r.Website)

	return m
}

func derefInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func derefFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func derefTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
