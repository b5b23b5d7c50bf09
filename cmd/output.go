package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/segmentio/encoding/json"

	"github.com/s0up4200/omdbq/omdb"
)

// renderer writes query results to the terminal
type renderer interface {
	Render(w io.Writer, mode omdb.Mode, records []omdb.Record) error
}

func newRenderer(format string) (renderer, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return consoleRenderer{}, nil
	case "json":
		return jsonRenderer{}, nil
	default:
		return nil, fmt.Errorf("invalid output format: %s (must be 'table' or 'json')", format)
	}
}

type jsonRenderer struct{}

// Render writes the records as an indented JSON array
func (jsonRenderer) Render(w io.Writer, _ omdb.Mode, records []omdb.Record) error {
	if records == nil {
		records = []omdb.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// consoleRenderer prints search results as a table and lookups as a detail tree
type consoleRenderer struct{}

func (c consoleRenderer) Render(w io.Writer, mode omdb.Mode, records []omdb.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No titles found")
		return err
	}

	if mode == omdb.ModeSearch {
		return c.renderTable(w, records)
	}
	_, err := io.WriteString(w, c.formatDetails(records))
	return err
}

func (consoleRenderer) renderTable(w io.Writer, records []omdb.Record) error {
	fmt.Fprintf(w, "\nResults (%d", len(records))
	if total := records[0].TotalResults; total != nil && *total != len(records) {
		fmt.Fprintf(w, " of %d", *total)
	}
	fmt.Fprint(w, "):\n\n")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tYEAR\tTYPE\tIMDB ID")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Title, orDash(rec.DisplayYear), rec.Type, rec.ImdbID)
	}
	return tw.Flush()
}

func (consoleRenderer) formatDetails(records []omdb.Record) string {
	var sb strings.Builder

	for i, rec := range records {
		isLast := i == len(records)-1
		prefix := "├"
		if isLast {
			prefix = "╰"
		}

		fmt.Fprintf(&sb, "%s── %s (%s)\n", prefix, rec.Title, orDash(rec.DisplayYear))

		indent := "│   "
		if isLast {
			indent = "    "
		}

		var header []string
		header = append(header, string(rec.Type), rec.ImdbID)
		if rec.Rated != "" {
			header = append(header, "Rated "+rec.Rated)
		}
		if rec.Runtime != nil {
			header = append(header, strconv.FormatFloat(*rec.Runtime, 'f', -1, 64)+" min")
		}
		fmt.Fprintf(&sb, "%s%s\n", indent, strings.Join(header, " | "))

		if len(rec.Genres) > 0 {
			fmt.Fprintf(&sb, "%sGenre: %s\n", indent, strings.Join(rec.Genres, ", "))
		}
		if len(rec.Directors) > 0 {
			fmt.Fprintf(&sb, "%sDirector: %s\n", indent, strings.Join(rec.Directors, ", "))
		}
		if len(rec.Actors) > 0 {
			fmt.Fprintf(&sb, "%sActors: %s\n", indent, strings.Join(rec.Actors, ", "))
		}

		var dateParts []string
		if rec.Released != nil {
			dateParts = append(dateParts, "Released: "+rec.Released.Format("2006-01-02"))
		}
		if rec.DVD != nil {
			dateParts = append(dateParts, "DVD: "+rec.DVD.Format("2006-01-02"))
		}
		if len(dateParts) > 0 {
			fmt.Fprintf(&sb, "%s%s\n", indent, strings.Join(dateParts, " | "))
		}

		if len(rec.Ratings) > 0 {
			ratings := make([]string, 0, len(rec.Ratings))
			for _, r := range rec.Ratings {
				ratings = append(ratings, r.Source+": "+r.Value)
			}
			fmt.Fprintf(&sb, "%sRatings: %s\n", indent, strings.Join(ratings, " | "))
		}
		if rec.ImdbVotes != nil {
			fmt.Fprintf(&sb, "%sIMDb votes: %.0f\n", indent, *rec.ImdbVotes)
		}
		if rec.TotalSeasons != nil {
			fmt.Fprintf(&sb, "%sSeasons: %.0f\n", indent, *rec.TotalSeasons)
		}
		if rec.BoxOffice != nil {
			fmt.Fprintf(&sb, "%sBox office: $%.0f\n", indent, *rec.BoxOffice)
		}
		if rec.Plot != "" {
			fmt.Fprintf(&sb, "%sPlot: %s\n", indent, rec.Plot)
		}
		for _, warning := range rec.Warnings {
			fmt.Fprintf(&sb, "%s! %s\n", indent, warning.Error())
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
