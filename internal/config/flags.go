package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by the server.
const EnvPrefix = "CLUEDO"

// LoadDotEnv reads a .env file into the process environment. A missing file
// is not an error.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if len(paths) == 0 && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// RegisterLogFlags binds the settings shared by every command to fs.
func (s *Settings) RegisterLogFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.LogLevel, "loglevel", Defaults().LogLevel, "logging level: debug, info, warn, error (env: CLUEDO_LOGLEVEL)")
}

// RegisterServerFlags binds the server settings to fs.
func (s *Settings) RegisterServerFlags(fs *pflag.FlagSet) {
	d := Defaults()

	fs.StringVar(&s.AppName, "app-name", d.AppName, "name reported by the health endpoint (env: CLUEDO_APP_NAME)")
	fs.StringVarP(&s.Bind, "bind", "b", d.Bind, "address to bind to (env: CLUEDO_BIND)")
	fs.IntVarP(&s.Port, "port", "p", d.Port, "port to listen on (env: CLUEDO_PORT)")

	fs.StringVar(&s.StoreBackend, "store", d.StoreBackend, "game store backend, json or sqlite (env: CLUEDO_STORE)")
	fs.StringVar(&s.GamesFile, "games-file", d.GamesFile, "path of the JSON game store (env: CLUEDO_GAMES_FILE)")
	fs.StringVar(&s.SQLitePath, "sqlite-path", d.SQLitePath, "path of the SQLite game store (env: CLUEDO_SQLITE_PATH)")
	fs.StringVar(&s.ThemesFile, "themes", d.ThemesFile, "JSON file with extra themes (env: CLUEDO_THEMES)")

	fs.IntVar(&s.MinRooms, "min-rooms", d.MinRooms, "fewest rooms a game may have (env: CLUEDO_MIN_ROOMS)")
	fs.IntVar(&s.MaxRooms, "max-rooms", d.MaxRooms, "most rooms a game may have (env: CLUEDO_MAX_ROOMS)")
	fs.IntVar(&s.MinPlayers, "min-players", d.MinPlayers, "players needed to start (env: CLUEDO_MIN_PLAYERS)")
	fs.IntVar(&s.MaxPlayers, "max-players", d.MaxPlayers, "seats per game (env: CLUEDO_MAX_PLAYERS)")

	fs.BoolVar(&s.UseAI, "use-ai", d.UseAI, "enable the narrator (env: CLUEDO_USE_AI)")
	fs.StringVar(&s.OpenAIKey, "openai-key", d.OpenAIKey, "API key of the narrator (env: CLUEDO_OPENAI_KEY)")
	fs.StringVar(&s.OpenAIBaseURL, "openai-base-url", d.OpenAIBaseURL, "base URL of an OpenAI compatible API (env: CLUEDO_OPENAI_BASE_URL)")
	fs.StringVar(&s.OpenAIModel, "openai-model", d.OpenAIModel, "chat model used for narration (env: CLUEDO_OPENAI_MODEL)")
	fs.DurationVar(&s.NarrationTimeout, "narration-timeout", d.NarrationTimeout, "deadline of one narration call (env: CLUEDO_NARRATION_TIMEOUT)")
}

// legacyEnv lists variable names also accepted for a flag, after the CLUEDO_ one.
var legacyEnv = map[string][]string{
	"use-ai":     {"USE_OPENAI"},
	"openai-key": {"OPENAI_API_KEY"},
	"app-name":   {"APP_NAME"},
}

// NewViper returns a viper instance reading CLUEDO_* variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyEnv sets every flag not given on the command line from the environment.
// Command-line values win over environment values.
func ApplyEnv(fs *pflag.FlagSet, v *viper.Viper) error {
	var firstErr error
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if names, ok := legacyEnv[f.Name]; ok {
			env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			_ = v.BindEnv(append([]string{f.Name, env}, names...)...)
		} else {
			_ = v.BindEnv(f.Name)
		}
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("invalid value for %s: %w", f.Name, err)
		}
	})
	return firstErr
}
