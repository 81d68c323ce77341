package main

import (
	"fmt"
	"os"
	"time"

	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/mrwolf/moodlog/internal/db"
)

var (
	dbPath   string
	owner    string
	timezone string
)

var rootCmd = &cobra.Command{
	Use:          "moodctl",
	Short:        "moodctl inspects and edits a moodlog journal from the terminal",
	Long:         "moodctl works directly on the moodlog sqlite file: log moods, check streaks, and view analytics and history without the server.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (default $MOODLOG_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&owner, "owner", "", "Journal owner (default $USER)")
	rootCmd.PersistentFlags().StringVar(&timezone, "tz", "", "Timezone for day boundaries (default $MOODLOG_TIMEZONE or local)")
}

func withDB(run func(*db.DB) error) error {
	path := dbPath
	if path == "" {
		path = os.Getenv("MOODLOG_DB_PATH")
	}
	if path == "" {
		return fmt.Errorf("no database: pass --db or set MOODLOG_DB_PATH")
	}

	database, err := db.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()
	return run(database)
}

func resolveOwner() (string, error) {
	o := owner
	if o == "" {
		o = os.Getenv("USER")
	}
	if o == "" {
		return "", fmt.Errorf("no owner: pass --owner")
	}
	return o, nil
}

func resolveLocation() (*time.Location, error) {
	tz := timezone
	if tz == "" {
		tz = os.Getenv("MOODLOG_TIMEZONE")
	}
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz %q: %w", tz, err)
	}
	return loc, nil
}
