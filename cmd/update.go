package cmd

import (
	"fmt"
	"time"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/omdbq/config"
)

const repositorySlug = "s0up4200/omdbq"

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records the build information injected at link time
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "omdbq %s (built %s)\n", version, buildTime)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update omdbq to the latest release",
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	log := setupLogger(config.LoggingConfig{Level: "info", Format: "console", Color: true})

	current, err := currentVersion(version)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	release, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repositorySlug))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", repositorySlug)
	}

	if release.LessOrEqual(current.String()) {
		log.Info().Str("version", current.String()).Msg("Already up to date")
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	logUpdate(log, current.String(), release.Version(), release.PublishedAt)

	if err := selfupdate.UpdateTo(ctx, release.AssetURL, release.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated to %s\n", release.Version())
	return nil
}

// currentVersion parses the running version. Development builds cannot be updated.
func currentVersion(v string) (semver.Version, error) {
	parsed, err := semver.ParseTolerant(v)
	if err != nil {
		return semver.Version{}, fmt.Errorf("cannot update development build %q: %w", v, err)
	}
	return parsed, nil
}

func logUpdate(log zerolog.Logger, from, to string, published time.Time) {
	ev := log.Info().Str("from", from).Str("to", to)
	if !published.IsZero() {
		ev = ev.Time("published", published)
	}
	ev.Msg("Updating omdbq")
}
