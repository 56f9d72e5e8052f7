package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"motionfm/config"
	"motionfm/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "motionfm",
	Short: "MotionFM plays a random track whenever the motion sensor fires.",
	Long: `MotionFM waits for a motion sensor, picks a random track from the music
library, plays it to the end and then waits for the next motion.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded

		return logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogFile,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAge,
			Compress:   cfg.LogCompress,
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (default $MOTIONFM_CONFIG)")
}

// Execute executes the root command. SIGINT and SIGTERM cancel the command's
// context so the current track is stopped before exit.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
