package omdb

import (
	"errors"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DateLayout is the day-month-year format the service uses for dates
const DateLayout = "02 Jan 2006"

var (
	leadingInt = regexp.MustCompile(`\d+`)
	firstNum   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

	errNoNumber = errors.New("no numeric content")
)

// numericFields maps wire keys to the record field they fill
var numericFields = map[string]func(*Record) **float64{
	"Runtime":      func(r *Record) **float64 { return &r.Runtime },
	"Metascore":    func(r *Record) **float64 { return &r.Metascore },
	"imdbRating":   func(r *Record) **float64 { return &r.ImdbRating },
	"imdbVotes":    func(r *Record) **float64 { return &r.ImdbVotes },
	"BoxOffice":    func(r *Record) **float64 { return &r.BoxOffice },
	"totalSeasons": func(r *Record) **float64 { return &r.TotalSeasons },
}

var dateFields = map[string]func(*Record) **time.Time{
	"Released": func(r *Record) **time.Time { return &r.Released },
	"DVD":      func(r *Record) **time.Time { return &r.DVD },
}

var listFields = map[string]func(*Record) *[]string{
	"Genre":    func(r *Record) *[]string { return &r.Genres },
	"Director": func(r *Record) *[]string { return &r.Directors },
	"Writer":   func(r *Record) *[]string { return &r.Writers },
	"Actors":   func(r *Record) *[]string { return &r.Actors },
	"Language": func(r *Record) *[]string { return &r.Languages },
	"Country":  func(r *Record) *[]string { return &r.Countries },
}

var textFields = map[string]func(*Record) *string{
	"Title":      func(r *Record) *string { return &r.Title },
	"Year":       func(r *Record) *string { return &r.DisplayYear },
	"imdbID":     func(r *Record) *string { return &r.ImdbID },
	"Poster":     func(r *Record) *string { return &r.Poster },
	"Rated":      func(r *Record) *string { return &r.Rated },
	"Plot":       func(r *Record) *string { return &r.Plot },
	"Awards":     func(r *Record) *string { return &r.Awards },
	"Production": func(r *Record) *string { return &r.Production },
	"Website":    func(r *Record) *string { return &r.Website },
}

// discarded keys carry protocol state, not entity data
var discarded = map[string]bool{
	"Response": true,
	"Error":    true,
}

// StartYear returns the first integer embedded in a display year such as
// "1993-1997" or "2015-", or nil when there is none.
func StartYear(displayYear string) *int {
	m := leadingInt.FindString(displayYear)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// ParseNumber extracts the number in values like "136 min", "1,234,567" or
// "$12,000". Missing tokens yield nil without error.
func ParseNumber(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == notAvailable {
		return nil, nil
	}
	m := firstNum.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return nil, errNoNumber
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseDate parses a DateLayout value. Missing tokens yield nil without error.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == notAvailable {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Normalizer shapes single-entity payloads into records
type Normalizer struct {
	logger zerolog.Logger
}

// NewNormalizer creates a new Normalizer
func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts a lookup payload into a Record. Fields that cannot be
// coerced are left missing and reported in Record.Warnings.
func (n *Normalizer) Normalize(raw RawResponse) Record {
	var rec Record

	// sorted so warnings come out in a stable order
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		value := raw[key]
		if discarded[key] {
			continue
		}
		if value == nil {
			if _, known := knownField(key); !known {
				setExtra(&rec, key, nil)
			}
			continue
		}

		str, isString := value.(string)

		switch {
		case key == "Type" && isString:
			rec.Type = MediaType(strings.ToLower(str))
		case key == "Ratings":
			rec.Ratings = parseRatings(value)
		case numericFields[key] != nil && isString:
			num, err := ParseNumber(str)
			if err != nil {
				n.warn(&rec, key, str, err)
				continue
			}
			*numericFields[key](&rec) = num
		case dateFields[key] != nil && isString:
			date, err := ParseDate(str)
			if err != nil {
				n.warn(&rec, key, str, err)
				continue
			}
			*dateFields[key](&rec) = date
		case listFields[key] != nil && isString:
			*listFields[key](&rec) = splitList(str)
		case textFields[key] != nil && isString:
			*textFields[key](&rec) = str
		default:
			setExtra(&rec, key, value)
		}
	}

	rec.StartYear = StartYear(rec.DisplayYear)
	return rec
}

func (n *Normalizer) warn(rec *Record, field, value string, err error) {
	w := FieldCoercionWarning{Field: field, Value: value, Err: err}
	rec.Warnings = append(rec.Warnings, w)
	n.logger.Warn().
		Str("imdb_id", rec.ImdbID).
		Str("field", field).
		Str("value", value).
		Err(err).
		Msg("Leaving unparseable field missing")
}

func knownField(key string) (string, bool) {
	if key == "Type" || key == "Ratings" {
		return key, true
	}
	if numericFields[key] != nil || dateFields[key] != nil || listFields[key] != nil || textFields[key] != nil {
		return key, true
	}
	return "", false
}

func setExtra(rec *Record, key string, value any) {
	if rec.Extra == nil {
		rec.Extra = make(map[string]any)
	}
	rec.Extra[key] = value
}

// splitList splits the service's comma-separated people and genre lists
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && p != notAvailable {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseRatings(value any) []Rating {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	ratings := make([]Rating, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		source, _ := m["Source"].(string)
		val, _ := m["Value"].(string)
		if source == "" {
			continue
		}
		ratings = append(ratings, Rating{Source: source, Value: val})
	}
	return ratings
}

// searchRecord shapes one entry of a search result list
func searchRecord(item map[string]any) Record {
	rec := Record{}
	rec.Title, _ = item["Title"].(string)
	rec.DisplayYear, _ = item["Year"].(string)
	rec.ImdbID, _ = item["imdbID"].(string)
	if t, ok := item["Type"].(string); ok {
		rec.Type = MediaType(strings.ToLower(t))
	}
	if poster, ok := item["Poster"].(string); ok && !isEmptyValue(poster) {
		rec.Poster = poster
	}
	rec.StartYear = StartYear(rec.DisplayYear)
	return rec
}
