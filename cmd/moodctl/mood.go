package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrwolf/moodlog/internal/analytics"
	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/models"
	"github.com/mrwolf/moodlog/internal/wellness"
)

var addCmd = &cobra.Command{
	Use:   "add <mood> [note...]",
	Short: "Log a mood entry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mood, ok := models.ParseCategory(args[0])
		if !ok {
			return fmt.Errorf("unknown mood %q (expected one of %s)", args[0], categoryList())
		}
		who, err := resolveOwner()
		if err != nil {
			return err
		}
		loc, err := resolveLocation()
		if err != nil {
			return err
		}
		note := strings.TrimSpace(strings.Join(args[1:], " "))

		return withDB(func(database *db.DB) error {
			entry, err := database.CreateMood(cmd.Context(), who, mood, note)
			if err != nil {
				return err
			}
			entries, err := database.ListEntries(cmd.Context(), who, db.ListOptions{})
			if err != nil {
				return err
			}
			streak := analytics.ComputeStreak(entries, time.Now().In(loc))
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %s for %s (streak: %d days)\n", entry.Mood.Emoji(), entry.Mood, who, streak)
			return nil
		})
	},
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the current logging streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := resolveOwner()
		if err != nil {
			return err
		}
		loc, err := resolveLocation()
		if err != nil {
			return err
		}
		return withDB(func(database *db.DB) error {
			entries, err := database.ListEntries(cmd.Context(), who, db.ListOptions{})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", analytics.ComputeStreak(entries, time.Now().In(loc)))
			return nil
		})
	},
}

var (
	analyticsPreset string
	analyticsMonth  string
	analyticsJSON   bool
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Mood distribution and balance for a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, ok := analytics.Preset(analyticsPreset)
		if !ok {
			return fmt.Errorf("unknown --preset %q (expected dashboard or insights)", analyticsPreset)
		}
		who, err := resolveOwner()
		if err != nil {
			return err
		}
		loc, err := resolveLocation()
		if err != nil {
			return err
		}
		start, end, err := resolveMonth(analyticsMonth, loc)
		if err != nil {
			return err
		}

		return withDB(func(database *db.DB) error {
			entries, err := database.ListEntries(cmd.Context(), who, db.ListOptions{Since: start, Until: end})
			if err != nil {
				return err
			}
			report := analytics.Analyze(entries, preset)

			if analyticsJSON {
				b, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal analytics json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			printReport(cmd, start, report)
			return nil
		})
	},
}

func printReport(cmd *cobra.Command, month time.Time, r analytics.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d entries\n", month.Format("January 2006"), r.Total)
	for _, c := range append(append([]models.Category{}, models.Categories...), models.MoodUncategorized) {
		if n := r.Distribution[c]; n > 0 {
			fmt.Fprintf(out, "  %s %-13s %3d  %3d%%\n", c.Emoji(), c, n, r.Percentages[c])
		}
	}
	fmt.Fprintf(out, "Most frequent: %s\n", r.MostFrequentLabel("none"))
	fmt.Fprintf(out, "Balance: %s %s\n", r.Balance.Emoji, r.Balance.Label)
	if r.Balance.Insight != "" {
		fmt.Fprintf(out, "  %s\n", r.Balance.Insight)
	}
}

// resolveMonth parses YYYY-MM, defaulting to the current month
func resolveMonth(value string, loc *time.Location) (time.Time, time.Time, error) {
	var start time.Time
	if value == "" {
		now := time.Now().In(loc)
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	} else {
		t, err := time.ParseInLocation("2006-01", value, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --month %q (expected YYYY-MM)", value)
		}
		start = t
	}
	return start, start.AddDate(0, 1, 0), nil
}

var (
	historyMood string
	historySort string
	historyPage int
	historyJSON bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journal entries, twenty per page",
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := resolveOwner()
		if err != nil {
			return err
		}
		loc, err := resolveLocation()
		if err != nil {
			return err
		}

		return withDB(func(database *db.DB) error {
			svc := wellness.NewService(database, nil, wellness.Options{Location: loc})
			view, err := svc.History(cmd.Context(), who, wellness.HistoryQuery{
				Sort: historySort,
				Mood: historyMood,
				Page: historyPage,
			})
			if err != nil {
				return err
			}

			if historyJSON {
				b, err := json.MarshalIndent(view, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal history json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}

			out := cmd.OutOrStdout()
			for _, e := range view.Entries {
				fmt.Fprintf(out, "%s  %s %-8s %s\n", e.CreatedAt.In(loc).Format("2006-01-02 15:04"), e.Mood.Emoji(), e.Mood, e.Note)
			}
			fmt.Fprintf(out, "page %d/%d, %d matching, %d total, most common %s\n",
				view.Page, view.TotalPages, view.Matching, view.Stats.Total, view.Stats.MostCommon)
			return nil
		})
	},
}

var ownersCmd = &cobra.Command{
	Use:   "owners",
	Short: "List every owner with journal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(database *db.DB) error {
			owners, err := database.Owners(cmd.Context())
			if err != nil {
				return err
			}
			for _, o := range owners {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}
			return nil
		})
	},
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func init() {
	analyticsCmd.Flags().StringVar(&analyticsPreset, "preset", analytics.PresetDashboard, "Balance preset: dashboard or insights")
	analyticsCmd.Flags().StringVar(&analyticsMonth, "month", "", "Month as YYYY-MM (default current month)")
	analyticsCmd.Flags().BoolVar(&analyticsJSON, "json", false, "Print JSON")

	historyCmd.Flags().StringVar(&historyMood, "mood", "", "Only entries with this mood")
	historyCmd.Flags().StringVar(&historySort, "sort", "newest", "newest or oldest")
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "Page number")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print JSON")

	rootCmd.AddCommand(addCmd, streakCmd, analyticsCmd, historyCmd, ownersCmd)
}
