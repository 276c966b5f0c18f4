package commands

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gradescope-scraper/internal/components/telemetry"
	"gradescope-scraper/internal/scrapers/gradescope"
	"gradescope-scraper/lib/configutil"

	"github.com/joho/godotenv"
)

type Config struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	BaseUrl  string `json:"base_url"`
	// RequestDelayMs spaces out the requests made per submission. Zero keeps
	// the client default, a negative value turns the delay off.
	RequestDelayMs   int  `json:"request_delay_ms"`
	TimeoutSeconds   int  `json:"timeout_seconds"`
	CloudflareBypass bool `json:"cloudflare_bypass"`
	// Timezone is the zone date flags are read in, ex. "America/New_York".
	Timezone string               `json:"timezone"`
	Otlp     telemetry.OtlpConfig `json:"otlp"`
}

func (c Config) options() gradescope.Options {
	return gradescope.Options{
		BaseUrl:          c.BaseUrl,
		RequestDelay:     time.Duration(c.RequestDelayMs) * time.Millisecond,
		Timeout:          time.Duration(c.TimeoutSeconds) * time.Second,
		CloudflareBypass: c.CloudflareBypass,
	}
}

func (c Config) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

var envOverrides = []struct {
	key   string
	apply func(c *Config, value string) error
}{
	{key: "GRADESCOPE_EMAIL", apply: func(c *Config, v string) error { c.Email = v; return nil }},
	{key: "GRADESCOPE_PASSWORD", apply: func(c *Config, v string) error { c.Password = v; return nil }},
	{key: "GRADESCOPE_BASE_URL", apply: func(c *Config, v string) error { c.BaseUrl = v; return nil }},
	{key: "GRADESCOPE_TIMEZONE", apply: func(c *Config, v string) error { c.Timezone = v; return nil }},
	{key: "GRADESCOPE_REQUEST_DELAY_MS", apply: func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.RequestDelayMs = n
		return nil
	}},
}

// loadConfig reads the json5 config (and its local override) if there is
// one, then applies environment variables, including those of a `.env` file
// in the working directory. A bare file name is looked up in the working
// directory and its parents.
func loadConfig(path string) (Config, error) {
	read := configutil.ReadConfig[Config]
	if filepath.Base(path) == path {
		read = configutil.ReadRecursively[Config]
	}
	cfg, err := read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	for _, override := range envOverrides {
		value, ok := os.LookupEnv(override.key)
		if !ok {
			continue
		}
		err := override.apply(&cfg, value)
		if err != nil {
			return Config{}, errors.Join(errors.New(override.key), err)
		}
	}

	if cfg.Email == "" || cfg.Password == "" {
		return Config{}, errors.New("email and password must be set in the config or through GRADESCOPE_EMAIL and GRADESCOPE_PASSWORD")
	}
	return cfg, nil
}
