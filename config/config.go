package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Selection modes.
const (
	ModeFolder  = "folder"
	ModeLibrary = "library"
	ModeShuffle = "shuffle"
)

// Sensor and player backends.
const (
	SensorGPIO = "gpio"
	SensorMQTT = "mqtt"
	PlayerVLC  = "vlc"
	PlayerMPD  = "mpd"
)

// History sinks.
const (
	HistoryNone  = "none"
	HistoryRedis = "redis"
	HistoryMySQL = "mysql"
)

// Config stores the application configuration.
// Every value has a default so a bare device runs with no .env at all.
type Config struct {
	MusicDir      string
	MusicFolder   string // folder used by the folder and shuffle modes
	SelectionMode string
	RandomSeed    int64 // 0 seeds from the wall clock

	Sensor       string
	GPIOPin      string
	SensorPoll   time.Duration
	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	Player      string
	VLCPath     string
	MPDAddress  string
	MPDPassword string
	MPDMusicDir string // MPD's music_directory, used to build relative URIs
	PlayGrace   time.Duration
	PlayPoll    time.Duration

	History []string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPrefix    string

	LogLevel      string
	LogFile       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

// source resolves a key from the environment first, then the optional TOML file.
type source struct {
	file map[string]string
}

func (s source) lookup(key string) (string, bool) {
	if value, exists := os.LookupEnv(key); exists {
		return value, true
	}
	value, exists := s.file[key]
	return value, exists
}

// getEnv gets a value or returns a default value.
func (s source) getEnv(key, fallback string) string {
	if value, exists := s.lookup(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets a value as int or returns a default value.
func (s source) getEnvInt(key string, fallback int) int {
	if value, exists := s.lookup(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func (s source) getEnvInt64(key string, fallback int64) int64 {
	if value, exists := s.lookup(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

func (s source) getEnvBool(key string, fallback bool) bool {
	if value, exists := s.lookup(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("1500ms") or a bare number of seconds.
func (s source) getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := s.lookup(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}

func (s source) getEnvList(key string, fallback []string) []string {
	value, exists := s.lookup(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(strings.ToLower(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// readFile decodes a flat TOML file whose keys are the environment variable names.
func readFile(path string) (map[string]string, error) {
	raw := make(map[string]interface{})
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			values[strings.ToUpper(key)] = strings.Join(parts, ",")
		default:
			values[strings.ToUpper(key)] = fmt.Sprint(v)
		}
	}
	return values, nil
}

// Load loads configuration from environment variables (via .env file), an optional
// TOML file, or defaults. An empty path falls back to MOTIONFM_CONFIG.
func Load(path string) (*Config, error) {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	if path == "" {
		path = os.Getenv("MOTIONFM_CONFIG")
	}

	var src source
	if path != "" {
		values, err := readFile(path)
		if err != nil {
			return nil, err
		}
		src.file = values
	}

	cfg := &Config{
		MusicDir:      src.getEnv("MUSIC_DIR", "/home/pi/music"),
		MusicFolder:   src.getEnv("MUSIC_FOLDER", "lofi"),
		SelectionMode: strings.ToLower(src.getEnv("SELECTION_MODE", ModeFolder)),
		RandomSeed:    src.getEnvInt64("RANDOM_SEED", 0),

		Sensor:       strings.ToLower(src.getEnv("SENSOR", SensorGPIO)),
		GPIOPin:      src.getEnv("GPIO_PIN", "GPIO4"),
		SensorPoll:   src.getEnvDuration("SENSOR_POLL", time.Second),
		MQTTBroker:   src.getEnv("MQTT_BROKER", "tcp://127.0.0.1:1883"),
		MQTTTopic:    src.getEnv("MQTT_TOPIC", "motionfm/motion"),
		MQTTClientID: src.getEnv("MQTT_CLIENT_ID", "motionfm"),
		MQTTUsername: src.getEnv("MQTT_USERNAME", ""),
		MQTTPassword: src.getEnv("MQTT_PASSWORD", ""),

		Player:      strings.ToLower(src.getEnv("PLAYER", PlayerVLC)),
		VLCPath:     src.getEnv("VLC_PATH", "cvlc"),
		MPDAddress:  src.getEnv("MPD_ADDRESS", "127.0.0.1:6600"),
		MPDPassword: src.getEnv("MPD_PASSWORD", ""),
		MPDMusicDir: src.getEnv("MPD_MUSIC_DIR", ""),
		PlayGrace:   src.getEnvDuration("PLAY_GRACE", 2*time.Second),
		PlayPoll:    src.getEnvDuration("PLAY_POLL", 2*time.Second),

		History: src.getEnvList("HISTORY", []string{HistoryNone}),

		RedisHost:     src.getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     src.getEnv("REDIS_PORT", "6379"),
		RedisPassword: src.getEnv("REDIS_PASSWORD", ""),
		RedisDB:       src.getEnvInt("REDIS_DB", 0),

		DBHost:     src.getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     src.getEnv("DB_PORT", "3306"),
		DBUser:     src.getEnv("DB_USER", "root"),
		DBPassword: src.getEnv("DB_PASSWORD", ""),
		DBName:     src.getEnv("DB_NAME", "motionfm"),

		MinioEndpoint:  src.getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: src.getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: src.getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    src.getEnv("MINIO_BUCKET", "music"),
		MinioUseSSL:    src.getEnvBool("MINIO_USE_SSL", false),
		MinioPrefix:    src.getEnv("MINIO_PREFIX", ""),

		LogLevel:      strings.ToLower(src.getEnv("LOG_LEVEL", "info")),
		LogFile:       src.getEnv("LOG_FILE", ""),
		LogMaxSize:    src.getEnvInt("LOG_MAX_SIZE", 10),
		LogMaxBackups: src.getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     src.getEnvInt("LOG_MAX_AGE", 28),
		LogCompress:   src.getEnvBool("LOG_COMPRESS", false),
	}

	return cfg, nil
}

// Validate rejects values the player cannot run with.
func (c *Config) Validate() error {
	switch c.SelectionMode {
	case ModeFolder, ModeLibrary, ModeShuffle:
	default:
		return fmt.Errorf("unknown selection mode %q", c.SelectionMode)
	}
	switch c.Sensor {
	case SensorGPIO, SensorMQTT:
	default:
		return fmt.Errorf("unknown sensor %q", c.Sensor)
	}
	switch c.Player {
	case PlayerVLC, PlayerMPD:
	default:
		return fmt.Errorf("unknown player %q", c.Player)
	}
	for _, h := range c.History {
		switch h {
		case HistoryNone, HistoryRedis, HistoryMySQL:
		default:
			return fmt.Errorf("unknown history sink %q", h)
		}
	}
	if c.MusicDir == "" {
		return fmt.Errorf("MUSIC_DIR must not be empty")
	}
	if c.SelectionMode != ModeLibrary && c.MusicFolder == "" {
		return fmt.Errorf("MUSIC_FOLDER must not be empty in %s mode", c.SelectionMode)
	}
	if c.PlayGrace <= 0 || c.PlayPoll <= 0 || c.SensorPoll <= 0 {
		return fmt.Errorf("PLAY_GRACE, PLAY_POLL and SENSOR_POLL must be positive")
	}
	return nil
}

// HistoryEnabled reports whether the named sink was requested.
func (c *Config) HistoryEnabled(sink string) bool {
	for _, h := range c.History {
		if h == sink {
			return true
		}
	}
	return false
}

// Seed returns the configured seed, or the current wall-clock second.
func (c *Config) Seed() int64 {
	if c.RandomSeed != 0 {
		return c.RandomSeed
	}
	return time.Now().Unix()
}
