package cmd

import (
	"fmt"
	"io"

	"motionfm/core/library"

	"github.com/spf13/cobra"
)

var pickCount int

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Print what the selector would play, without a sensor or player",
	RunE: func(cmd *cobra.Command, args []string) error {
		selector, err := newSelector(cfg)
		if err != nil {
			return err
		}
		if c, ok := selector.(io.Closer); ok {
			defer c.Close()
		}

		out := cmd.OutOrStdout()
		for i := 0; i < pickCount; i++ {
			path, err := selector.Next()
			if err != nil {
				return err
			}
			track, _ := library.ReadTrack(path)
			fmt.Fprintf(out, "%d. %s [%s]\n   %s\n", i+1, track.Label(), track.Album, path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pickCmd)
	pickCmd.Flags().IntVarP(&pickCount, "count", "n", 1, "number of tracks to pick")
}
