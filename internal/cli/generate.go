package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-etl/internal/datagen"
	"github.com/pgEdge/pgedge-etl/internal/datagen/activity"
	"github.com/pgEdge/pgedge-etl/internal/logging"
)

var (
	genOut      string
	genSongs    int
	genUsers    int
	genEvents   int
	genDays     int
	genSeed     int64
	genProfile  string
	genTimezone string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic input dataset",
	Long: `Generate a synthetic song catalog and event log shaped like the real
input: song_data/A/B/C/TR*.json files holding one song each, and one
log_data/YYYY-MM-DD-events.json file per day with newline delimited events.

The event log includes pages other than NextSong, logged out visitors,
free/paid level changes and plays of songs missing from the catalog.
Event times follow a listening activity profile:

  evening  - regional audience, evening peak (default)
  commuter - 7-9AM and 5-7PM peaks, weekday focus
  global   - worldwide audience, 24/7 with regional peaks
  flat     - uniform activity

Example:
  pgedge-etl generate --out ./sample_data --songs 500 --events 20000 --seed 7`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genOut, "out", "",
		"output directory (default: sample_data)")
	generateCmd.Flags().IntVar(&genSongs, "songs", 0,
		"number of catalog songs")
	generateCmd.Flags().IntVar(&genUsers, "users", 0,
		"number of distinct users")
	generateCmd.Flags().IntVar(&genEvents, "events", 0,
		"total number of log events")
	generateCmd.Flags().IntVar(&genDays, "days", 0,
		"number of daily log files")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0,
		"random seed for reproducible output (0 = random)")
	generateCmd.Flags().StringVar(&genProfile, "profile", "",
		"listening activity profile: evening, commuter, global, flat")
	generateCmd.Flags().StringVar(&genTimezone, "timezone", "",
		"timezone for profile calculations (default: UTC)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if genOut != "" {
		cfg.Generate.Out = genOut
	}
	if genSongs > 0 {
		cfg.Generate.Songs = genSongs
	}
	if genUsers > 0 {
		cfg.Generate.Users = genUsers
	}
	if genEvents > 0 {
		cfg.Generate.Events = genEvents
	}
	if genDays > 0 {
		cfg.Generate.Days = genDays
	}
	if genSeed != 0 {
		cfg.Generate.Seed = genSeed
	}
	if genProfile != "" {
		cfg.Generate.Profile = genProfile
	}
	if genTimezone != "" {
		cfg.Generate.Timezone = genTimezone
	}

	// Validate configuration
	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}

	profile, err := activity.Get(cfg.Generate.Profile, cfg.Generate.Timezone)
	if err != nil {
		return err
	}

	logging.Info().
		Str("out", cfg.Generate.Out).
		Int("songs", cfg.Generate.Songs).
		Int("users", cfg.Generate.Users).
		Int("events", cfg.Generate.Events).
		Int("days", cfg.Generate.Days).
		Str("profile", profile.Name()).
		Msg("Generating dataset")

	gen := datagen.NewGenerator(datagen.Config{
		Songs:   cfg.Generate.Songs,
		Users:   cfg.Generate.Users,
		Events:  cfg.Generate.Events,
		Days:    cfg.Generate.Days,
		Seed:    cfg.Generate.Seed,
		Profile: profile,
	})
	if _, err := gen.Generate(cmd.Context(), cfg.Generate.Out); err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	return nil
}
