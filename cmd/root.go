package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/omdbq/config"
	"github.com/s0up4200/omdbq/credentials"
	"github.com/s0up4200/omdbq/filter"
	"github.com/s0up4200/omdbq/omdb"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	service       omdb.Querier
	filterManager *filter.Manager

	// Command flags
	outputFormat string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "omdbq",
	Short: "Look up and search movies, series and games on OMDb",
	Long: `omdbq queries the Open Movie Database. Look up a single title by IMDb ID
or by name, or search by term and collect every page of results into one
normalized, sorted list that can be narrowed further with filter expressions.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log the request parameters (never the API key)")

	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration, logger and OMDb service
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("output") {
		cfg.Output.Format = outputFormat
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Output.Verbose = verbose
	}
	if _, err := newRenderer(cfg.Output.Format); err != nil {
		return err
	}

	logger = setupLogger(cfg.Logging)

	service, err = omdb.New(newCredentialProvider(cfg.OMDB), logger, omdb.ServiceOptions{
		Verbose:     cfg.Output.Verbose,
		Concurrency: cfg.Search.Concurrency,
		Client: []omdb.Option{
			omdb.WithBaseURL(cfg.OMDB.URL),
			omdb.WithTimeout(cfg.OMDB.Timeout),
			omdb.WithUserAgent("omdbq/" + version),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create OMDb client: %w", err)
	}

	filterManager = filter.NewManager()
	if err := filterManager.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	return nil
}

// newCredentialProvider looks for the key inline, then in a file, then in the environment
func newCredentialProvider(c config.OMDBConfig) credentials.Provider {
	return credentials.Chain{
		credentials.Static(c.APIKey),
		credentials.File(c.APIKeyFile),
		credentials.Env(c.APIKeyEnv),
	}
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	fd := os.Stderr.Fd()
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:     "test",
	Short:   "Test the API key and the connection to OMDb",
	Long:    `Look up a known title to check that OMDb is reachable and accepts the configured API key.`,
	PreRunE: initializeApp,
	RunE:    runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to OMDb at %s...\n", cfg.OMDB.URL)

	records, err := service.Query(cmd.Context(), omdb.Query{Mode: omdb.ModeID})
	if err != nil {
		return fmt.Errorf("connection test failed: %w", describeError(err))
	}

	fmt.Fprintln(out, "✓ Connection successful!")
	if len(records) > 0 {
		fmt.Fprintf(out, "- Sample lookup: %s (%s)\n", records[0].Title, records[0].DisplayYear)
	}
	fmt.Fprintf(out, "- Search concurrency: %d\n", cfg.Search.Concurrency)
	fmt.Fprintf(out, "- Filter presets: %d\n", len(filterManager.ListFilters()))

	return nil
}
