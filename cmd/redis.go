package cmd

import (
	"fmt"

	"motionfm/cache"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Test the Redis connection used for play history",
	Long:  `Connects to Redis and performs a set/get/delete round trip.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Redis: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := cache.ConnectRedis(cfg); err != nil {
			return err
		}
		defer cache.CloseRedis()
		fmt.Fprintln(out, "connected")

		if err := cache.TestRedis(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(out, "read/write round trip ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
