// Package config layers command-line flags, DOJO_* environment variables,
// an optional config file and defaults into one Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hammamikhairi/dojotimer/internal/cue"
)

// EnvPrefix is prepended to every environment variable, e.g. DOJO_LOG_LEVEL.
const EnvPrefix = "DOJO"

// Keys.
const (
	KeyConfig           = "config"
	KeyLogLevel         = "log-level"
	KeyLogFile          = "log-file"
	KeyDB               = "db"
	KeyProgramsDir      = "programs-dir"
	KeyListen           = "listen"
	KeyNoAudio          = "no-audio"
	KeyNoCountdown      = "no-countdown"
	KeyCountdownSeconds = "countdown-seconds"
	KeyTick             = "tick"
	KeyInfiniteSets     = "infinite-sets"
	KeyCueReady         = "cue-ready"
	KeyCueTransition    = "cue-transition"
	KeyCueFinish        = "cue-finish"
)

// Config is the resolved application configuration.
type Config struct {
	LogLevel    string
	LogFile     string
	DBPath      string
	ProgramsDir string
	// Listen is the remote-control address; empty disables it.
	Listen string

	NoAudio          bool
	NoCountdown      bool
	CountdownSeconds int
	Tick             time.Duration
	InfiniteSets     int

	// CueAssets maps cue kinds to WAV files. Kinds without an asset use
	// the built-in tones.
	CueAssets map[cue.Kind]string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:         "normal",
		LogFile:          filepath.Join(".dojo-logs", "dojotimer.log"),
		CountdownSeconds: 3,
		Tick:             time.Second,
		InfiniteSets:     99,
		CueAssets:        map[cue.Kind]string{},
	}
}

// RegisterFlags adds every configuration flag to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(KeyConfig, "", "config file (yaml, json or toml)")
	fs.String(KeyLogLevel, d.LogLevel, "log level: off, normal or verbose")
	fs.String(KeyLogFile, d.LogFile, `log file ("stderr" logs to the console)`)
	fs.String(KeyDB, "", "SQLite database for recent programs (default in the user config dir)")
	fs.String(KeyProgramsDir, "", "directory of extra program files to load")
	fs.String(KeyListen, "", "address for the HTTP remote control, e.g. :8080")
	fs.Bool(KeyNoAudio, false, "disable cue sounds")
	fs.Bool(KeyNoCountdown, false, "start immediately without the ready countdown")
	fs.Int(KeyCountdownSeconds, d.CountdownSeconds, "length of the ready countdown")
	fs.Duration(KeyTick, d.Tick, "length of one timer second (for testing)")
	fs.Int(KeyInfiniteSets, d.InfiniteSets, "loops materialized for infinite role groups")
	fs.String(KeyCueReady, "", "WAV file for the ready cue")
	fs.String(KeyCueTransition, "", "WAV file for the transition cue")
	fs.String(KeyCueFinish, "", "WAV file for the finish cue")
}

// Load resolves the configuration. A .env file in the working directory is
// read first when present. fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	d := Default()
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyCountdownSeconds, d.CountdownSeconds)
	v.SetDefault(KeyTick, d.Tick)
	v.SetDefault(KeyInfiniteSets, d.InfiniteSets)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("binding flags: %w", err)
		}
	}

	if err := readConfigFile(v); err != nil {
		return Config{}, err
	}

	cfg := Config{
		LogLevel:         v.GetString(KeyLogLevel),
		LogFile:          v.GetString(KeyLogFile),
		DBPath:           v.GetString(KeyDB),
		ProgramsDir:      v.GetString(KeyProgramsDir),
		Listen:           v.GetString(KeyListen),
		NoAudio:          v.GetBool(KeyNoAudio),
		NoCountdown:      v.GetBool(KeyNoCountdown),
		CountdownSeconds: v.GetInt(KeyCountdownSeconds),
		Tick:             v.GetDuration(KeyTick),
		InfiniteSets:     v.GetInt(KeyInfiniteSets),
		CueAssets:        map[cue.Kind]string{},
	}
	for kind, key := range map[cue.Kind]string{
		cue.KindReady:      KeyCueReady,
		cue.KindTransition: KeyCueTransition,
		cue.KindFinish:     KeyCueFinish,
	} {
		if path := v.GetString(key); path != "" {
			cfg.CueAssets[kind] = path
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the timer cannot run with.
func (c Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTick, c.Tick)
	}
	if c.CountdownSeconds < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyCountdownSeconds, c.CountdownSeconds)
	}
	if c.InfiniteSets < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyInfiniteSets, c.InfiniteSets)
	}
	return nil
}

// readConfigFile reads the file named by the config key, or dojotimer.yaml
// from the user config dir when it exists.
func readConfigFile(v *viper.Viper) error {
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	v.SetConfigName("dojotimer")
	v.AddConfigPath(filepath.Join(dir, "dojotimer"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}
