package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"motionfm/cache"
	"motionfm/config"
	"motionfm/core/jukebox"
	"motionfm/core/library"
	"motionfm/core/motion"
	"motionfm/core/playback"
	"motionfm/db"
	"motionfm/logger"
	"motionfm/repository"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the motion-activated player (the default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}

// closers are released in reverse order on exit.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			logger.Warn("failed to release resource", logger.ErrorField(err))
		}
	}
}

func runPlayer(ctx context.Context, cfg *config.Config) error {
	var cleanup closers
	defer func() { cleanup.closeAll() }()

	watcher, err := newWatcher(cfg)
	if err != nil {
		return err
	}
	cleanup.add(watcher.Close)

	selector, err := newSelector(cfg)
	if err != nil {
		return err
	}
	if c, ok := selector.(io.Closer); ok {
		cleanup.add(c.Close)
	}

	player, err := newPlayer(cfg)
	if err != nil {
		return err
	}
	cleanup.add(player.Close)

	recorders, err := newRecorders(cfg, &cleanup)
	if err != nil {
		return err
	}

	controller := playback.NewController(player,
		playback.WithGrace(cfg.PlayGrace),
		playback.WithInterval(cfg.PlayPoll))

	logger.Info("starting motionfm",
		logger.String("music_dir", cfg.MusicDir),
		logger.String("mode", cfg.SelectionMode),
		logger.String("sensor", cfg.Sensor),
		logger.String("player", cfg.Player),
		logger.Int("recorders", len(recorders)))

	return jukebox.New(watcher, selector, controller, jukebox.WithRecorders(recorders...)).Run(ctx)
}

func newWatcher(cfg *config.Config) (motion.Watcher, error) {
	switch cfg.Sensor {
	case config.SensorMQTT:
		return motion.NewMQTTWatcher(motion.MQTTConfig{
			Broker:   cfg.MQTTBroker,
			Topic:    cfg.MQTTTopic,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		})
	default:
		return motion.NewGPIOWatcher(cfg.GPIOPin, cfg.SensorPoll)
	}
}

func newSelector(cfg *config.Config) (library.Selector, error) {
	rng := rand.New(rand.NewSource(cfg.Seed()))
	return library.NewSelector(library.New(cfg.MusicDir), cfg.SelectionMode, cfg.MusicFolder, rng)
}

func newPlayer(cfg *config.Config) (playback.Player, error) {
	switch cfg.Player {
	case config.PlayerMPD:
		return playback.NewMPDPlayer(cfg.MPDAddress, cfg.MPDPassword, cfg.MPDMusicDir)
	default:
		return playback.NewVLCPlayer(cfg.VLCPath)
	}
}

// newRecorders connects the configured history sinks. A sink that cannot be
// reached at startup is a configuration error.
func newRecorders(cfg *config.Config, cleanup *closers) ([]jukebox.Recorder, error) {
	var recorders []jukebox.Recorder

	if cfg.HistoryEnabled(config.HistoryRedis) {
		if err := cache.ConnectRedis(cfg); err != nil {
			return nil, err
		}
		cleanup.add(cache.CloseRedis)
		recorders = append(recorders, cache.NewHistoryCache(cache.RedisClient))
	}

	if cfg.HistoryEnabled(config.HistoryMySQL) {
		gdb, err := db.ConnectGormDB(cfg)
		if err != nil {
			return nil, err
		}
		cleanup.add(db.CloseGormDB)

		repo := repository.NewPlayRepository(gdb)
		if err := repo.Migrate(); err != nil {
			return nil, fmt.Errorf("history database: %w", err)
		}
		recorders = append(recorders, repo)
	}

	return recorders, nil
}
