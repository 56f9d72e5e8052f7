package cmd

import (
	"fmt"
	"time"

	"motionfm/core/motion"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var sensorInterval time.Duration

var activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))

var sensorCmd = &cobra.Command{
	Use:   "sensor",
	Short: "Print the motion sensor level until interrupted",
	Long: `Reads the configured motion sensor every interval and prints "." while it
is low and "!" while it is high. Nothing is played.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watcher, err := newWatcher(cfg)
		if err != nil {
			return err
		}
		defer watcher.Close()

		reader, ok := watcher.(motion.Reader)
		if !ok {
			return fmt.Errorf("sensor %q cannot be sampled", cfg.Sensor)
		}

		out := cmd.OutOrStdout()
		err = motion.Sample(cmd.Context(), reader, sensorInterval, func(active bool) {
			fmt.Fprint(out, levelMark(active))
		})
		fmt.Fprintln(out)
		return err
	},
}

func levelMark(active bool) string {
	if active {
		return activeStyle.Render("!")
	}
	return "."
}

func init() {
	rootCmd.AddCommand(sensorCmd)
	sensorCmd.Flags().DurationVarP(&sensorInterval, "interval", "i", 500*time.Millisecond, "time between two readings")
}
