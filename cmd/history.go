package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"motionfm/cache"
	"motionfm/config"
	"motionfm/db"
	"motionfm/model"
	"motionfm/repository"

	"github.com/spf13/cobra"
)

var (
	historySource string
	historyLimit  int
	historyCounts bool
)

// playCounter returns how often a track was played in total.
type playCounter func(ctx context.Context, path string) (int64, error)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent plays",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			plays []model.Play
			count playCounter
		)

		switch historySource {
		case config.HistoryRedis:
			if err := cache.ConnectRedis(cfg); err != nil {
				return err
			}
			defer cache.CloseRedis()

			history := cache.NewHistoryCache(cache.RedisClient)
			count = history.PlayCount

			var err error
			plays, err = history.Recent(ctx, int64(historyLimit))
			if err != nil {
				return err
			}
		case config.HistoryMySQL:
			gdb, err := db.ConnectGormDB(cfg)
			if err != nil {
				return err
			}
			defer db.CloseGormDB()

			repo := repository.NewPlayRepository(gdb)
			count = repo.CountByPath

			plays, err = repo.Recent(ctx, historyLimit)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown history source %q", historySource)
		}

		if !historyCounts {
			count = nil
		}
		return printHistory(ctx, cmd.OutOrStdout(), plays, count)
	},
}

// printHistory writes one line per play. With a counter each line ends in
// the track's total play count.
func printHistory(ctx context.Context, out io.Writer, plays []model.Play, count playCounter) error {
	for _, p := range plays {
		line := fmt.Sprintf("%s  %-11s %6s  %s",
			p.StartedAt.Format(time.DateTime),
			p.Outcome,
			p.Duration().Round(time.Second),
			p.Track().Label())

		if count != nil {
			n, err := count(ctx, p.Path)
			if err != nil {
				return err
			}
			line += fmt.Sprintf("  (%d plays)", n)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&historySource, "source", "s", config.HistoryRedis, "redis or mysql")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "number of plays to show")
	historyCmd.Flags().BoolVar(&historyCounts, "counts", false, "show each track's total play count")
}
