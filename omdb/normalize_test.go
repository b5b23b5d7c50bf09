package omdb

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartYear(t *testing.T) {
	tests := []struct {
		input string
		want  *int
	}{
		{"1993-1997", intPtr(1993)},
		{"1993–1997", intPtr(1993)},
		{"2015-", intPtr(2015)},
		{"2015–", intPtr(2015)},
		{"2022", intPtr(2022)},
		{"", nil},
		{"N/A", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, StartYear(tt.input))
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    *float64
		wantErr bool
	}{
		{"143 min", floatPtr(143), false},
		{"189,453", floatPtr(189453), false},
		{"$134,218,018", floatPtr(134218018), false},
		{"7.4", floatPtr(7.4), false},
		{"3", floatPtr(3), false},
		{"", nil, false},
		{"N/A", nil, false},
		{"unknown", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("15 Dec 1978")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1978, time.December, 15, 0, 0, 0, 0, time.UTC), *got)

	got, err = ParseDate("N/A")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseDate("1978-12-15")
	assert.Error(t, err)
}

func TestNormalizer_Normalize(t *testing.T) {
	raw := RawResponse{}
	for k, v := range supermanPayload {
		raw[k] = v
	}
	normalizeMissing(raw)

	rec := NewNormalizer(zerolog.Nop()).Normalize(raw)

	assert.Equal(t, "Superman", rec.Title)
	assert.Equal(t, "1978", rec.DisplayYear)
	assert.Equal(t, intPtr(1978), rec.StartYear)
	assert.Equal(t, "tt0078346", rec.ImdbID)
	assert.Equal(t, MediaTypeMovie, rec.Type)
	assert.Equal(t, "PG", rec.Rated)
	assert.Equal(t, floatPtr(143), rec.Runtime)
	assert.Equal(t, floatPtr(82), rec.Metascore)
	assert.Equal(t, floatPtr(7.4), rec.ImdbRating)
	assert.Equal(t, floatPtr(189453), rec.ImdbVotes)
	assert.Equal(t, floatPtr(134218018), rec.BoxOffice)
	assert.Nil(t, rec.TotalSeasons)
	require.NotNil(t, rec.Released)
	assert.Equal(t, 1978, rec.Released.Year())
	assert.Nil(t, rec.DVD)
	assert.Equal(t, []string{"Action", "Adventure", "Sci-Fi"}, rec.Genres)
	assert.Equal(t, []string{"Richard Donner"}, rec.Directors)
	assert.Len(t, rec.Writers, 3)
	assert.Equal(t, []string{"United States", "United Kingdom"}, rec.Countries)
	assert.Empty(t, rec.Production)
	assert.Len(t, rec.Ratings, 2)
	assert.True(t, rec.HasGenre("sci-fi"))

	value, ok := rec.RatingFrom("rotten tomatoes")
	assert.True(t, ok)
	assert.Equal(t, "94%", value)

	assert.Empty(t, rec.Warnings)
	assert.NotContains(t, rec.Extra, "Response")
}

func TestNormalizer_SeriesKeepsYearRange(t *testing.T) {
	raw := RawResponse{
		"Title":        "Batman",
		"Year":         "1966–1968",
		"totalSeasons": "3",
		"Type":         "series",
		"Response":     "True",
	}

	rec := NewNormalizer(zerolog.Nop()).Normalize(raw)
	assert.Equal(t, "1966–1968", rec.DisplayYear)
	assert.Equal(t, intPtr(1966), rec.StartYear)
	assert.Equal(t, floatPtr(3), rec.TotalSeasons)
	assert.Equal(t, MediaTypeSeries, rec.Type)
}

func TestNormalizer_CoercionWarnings(t *testing.T) {
	raw := RawResponse{
		"Title":      "Broken",
		"Year":       "2001",
		"Runtime":    "unknown",
		"Released":   "2001-05-04",
		"imdbRating": "6.1",
		"Response":   "True",
	}

	rec := NewNormalizer(zerolog.Nop()).Normalize(raw)

	assert.Nil(t, rec.Runtime)
	assert.Nil(t, rec.Released)
	assert.Equal(t, floatPtr(6.1), rec.ImdbRating)
	require.Len(t, rec.Warnings, 2)

	fields := []string{rec.Warnings[0].Field, rec.Warnings[1].Field}
	assert.ElementsMatch(t, []string{"Runtime", "Released"}, fields)
}

func TestNormalizer_WarningOrderIsStable(t *testing.T) {
	raw := RawResponse{
		"Title":     "Broken",
		"Runtime":   "abc",
		"Metascore": "xyz",
		"imdbVotes": "q",
		"Released":  "bogus",
		"DVD":       "nope",
		"BoxOffice": "zz",
		"Response":  "True",
	}
	n := NewNormalizer(zerolog.Nop())

	first := n.Normalize(raw)
	fields := make([]string, 0, len(first.Warnings))
	for _, w := range first.Warnings {
		fields = append(fields, w.Field)
	}
	assert.Equal(t, []string{"BoxOffice", "DVD", "Metascore", "Released", "Runtime", "imdbVotes"}, fields)

	for range 50 {
		require.Equal(t, first, n.Normalize(raw))
	}
}

func TestNormalizer_KeepsUnknownFields(t *testing.T) {
	raw := RawResponse{
		"Title":    "Game",
		"Year":     "2010",
		"Type":     "game",
		"Platform": "PC",
		"Season":   nil,
		"Response": "True",
	}

	rec := NewNormalizer(zerolog.Nop()).Normalize(raw)
	assert.Equal(t, MediaTypeGame, rec.Type)
	assert.Equal(t, "PC", rec.Extra["Platform"])
	assert.Contains(t, rec.Extra, "Season")
	assert.Nil(t, rec.Extra["Season"])

	m := rec.Map()
	assert.Equal(t, "PC", m["Platform"])
	assert.Equal(t, 2010, m["StartYear"])
	assert.Nil(t, m["Runtime"])
}

func intPtr(n int) *int {
	return &n
}

func floatPtr(f float64) *float64 {
	return &f
}
