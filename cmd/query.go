package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/omdbq/omdb"
)

// queryFlags holds the flags shared by the id, title and search commands
type queryFlags struct {
	year    string
	kind    string
	plot    string
	params  []string
	page    int
	where   string
	presets []string
}

var qf queryFlags

var idCmd = &cobra.Command{
	Use:     "id [imdb-id]",
	Short:   "Look up a title by IMDb ID",
	Example: "  omdbq id tt0078346 --plot full",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runQuery(omdb.ModeID),
}

var titleCmd = &cobra.Command{
	Use:   "title [title]",
	Short: "Look up a title by name",
	Long: `Look up a single title by name. When several titles share the name OMDb
picks one; use --year and --type to narrow it down.`,
	Example: "  omdbq title Batman --year 1966",
	PreRunE: initializeApp,
	RunE:    runQuery(omdb.ModeTitle),
}

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search titles and collect every page of results",
	Long: `Search OMDb by term. All result pages are fetched and merged into one
list sorted by title, type and year, unless --page pins a single page.`,
	Example: `  omdbq search Batman --type series
  omdbq search Batman --where 'StartYear >= 2000'`,
	PreRunE: initializeApp,
	RunE:    runQuery(omdb.ModeSearch),
}

func init() {
	for _, c := range []*cobra.Command{idCmd, titleCmd, searchCmd} {
		c.Flags().StringVarP(&qf.year, "year", "y", "", "year of release")
		c.Flags().StringVar(&qf.kind, "type", "", "movie, series, episode or game")
		c.Flags().StringArrayVar(&qf.params, "param", nil, "extra OMDb parameter as key=value (repeatable)")
		c.Flags().StringVarP(&qf.where, "where", "w", "", "filter expression applied to the results")
		c.Flags().StringSliceVarP(&qf.presets, "preset", "p", nil, "filter presets from config (repeatable)")
		rootCmd.AddCommand(c)
	}

	idCmd.Flags().StringVar(&qf.plot, "plot", "", "plot length: short or full")
	titleCmd.Flags().StringVar(&qf.plot, "plot", "", "plot length: short or full")
	searchCmd.Flags().IntVar(&qf.page, "page", 0, "fetch only this result page")
}

func runQuery(mode omdb.Mode) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		q, err := buildQuery(mode, args, qf)
		if err != nil {
			return err
		}

		presets := make([]string, len(qf.presets))
		for i, name := range qf.presets {
			presets[i] = strings.ToLower(name)
		}
		f, err := filterManager.Combine(qf.where, presets)
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}

		logger.Debug().
			Str("mode", string(q.Mode)).
			Str("value", q.Value).
			Int("page", q.Page).
			Msg("Running query")

		ctx := cmd.Context()
		records, err := service.Query(ctx, q)
		if err != nil {
			return fmt.Errorf("%s query failed: %w", mode, describeError(err))
		}

		total := len(records)
		records, err = filterManager.Apply(ctx, f, records)
		if err != nil {
			return err
		}
		if f != nil {
			logger.Info().Int("total", total).Int("matched", len(records)).Msg("Applied filter")
		}

		r, err := newRenderer(cfg.Output.Format)
		if err != nil {
			return err
		}
		return r.Render(cmd.OutOrStdout(), mode, records)
	}
}

// buildQuery turns command arguments and flags into a query
func buildQuery(mode omdb.Mode, args []string, flags queryFlags) (omdb.Query, error) {
	q := omdb.Query{
		Mode:    mode,
		Value:   strings.TrimSpace(strings.Join(args, " ")),
		Filters: make(map[string]string),
	}

	for _, p := range flags.params {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return omdb.Query{}, fmt.Errorf("invalid --param %q: expected key=value", p)
		}
		q.Filters[key] = strings.TrimSpace(value)
	}

	if flags.year != "" {
		q.Filters["y"] = flags.year
	}
	if flags.kind != "" {
		q.Filters["type"] = strings.ToLower(flags.kind)
	}
	if flags.plot != "" {
		plot := strings.ToLower(flags.plot)
		if plot != "short" && plot != "full" {
			return omdb.Query{}, fmt.Errorf("invalid --plot %q: must be 'short' or 'full'", flags.plot)
		}
		q.Filters["plot"] = plot
	}

	if flags.page < 0 {
		return omdb.Query{}, fmt.Errorf("invalid --page %d: must be positive", flags.page)
	}
	if mode == omdb.ModeSearch {
		q.Page = flags.page
	}

	return q, nil
}

// describeError adds a hint for the failures users can fix themselves
func describeError(err error) error {
	if errors.Is(err, omdb.ErrMissingCredential) {
		envVar := "OMDB_API_KEY"
		if cfg != nil && cfg.OMDB.APIKeyEnv != "" {
			envVar = cfg.OMDB.APIKeyEnv
		}
		return fmt.Errorf("%w (set omdb.api_key, omdb.api_key_file or the %s environment variable)", err, envVar)
	}

	var transportErr *omdb.TransportError
	if errors.As(err, &transportErr) && transportErr.IsUnauthorized() {
		return fmt.Errorf("%w (check that the API key is valid and activated)", err)
	}

	var rejection *omdb.RemoteRejectionError
	if errors.As(err, &rejection) && rejection.IsTooManyResults() {
		return fmt.Errorf("%w (use a longer search term or add --type/--year)", err)
	}

	return err
}
