package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultPort            = 8080
	defaultGitLabURL       = "https://gitlab.com"
	defaultPollMaxAttempts = 10
	defaultPollInterval    = time.Second
	defaultHTTPTimeout     = 30 * time.Second
)

// Config holds application configuration.
// Values come from flags, environment, .env files and an optional
// .mr-enhancer.yaml, in that order of precedence.
type Config struct {
	Port int

	// GitLab instance used when the page does not declare its own URL.
	GitLabURL string
	// Optional personal access token sent as PRIVATE-TOKEN.
	GitLabToken string
	// Optional _gitlab_session cookie value, used for page loads and API calls.
	GitLabSession string

	PreferencesFile string

	PollMaxAttempts int
	PollInterval    time.Duration
	HTTPTimeout     time.Duration

	LogLevel  string
	LogFormat string
	LogOutput string

	ConfigFile string
}

// Load loads configuration from the environment and config files.
func Load() (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if file := os.Getenv("MR_ENHANCER_CONFIG"); file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".mr-enhancer")
	}

	// Config file is optional.
	_ = v.ReadInConfig()

	return &Config{
		Port:            positiveInt(v, "port", defaultPort),
		GitLabURL:       stringOrDefault(v, "gitlab_url", defaultGitLabURL),
		GitLabToken:     v.GetString("gitlab_token"),
		GitLabSession:   v.GetString("gitlab_session"),
		PreferencesFile: v.GetString("preferences_file"),
		PollMaxAttempts: positiveInt(v, "poll_max_attempts", defaultPollMaxAttempts),
		PollInterval:    positiveDuration(v, "poll_interval", defaultPollInterval),
		HTTPTimeout:     positiveDuration(v, "http_timeout", defaultHTTPTimeout),
		LogLevel:        stringOrDefault(v, "log_level", "info"),
		LogFormat:       stringOrDefault(v, "log_format", "auto"),
		LogOutput:       stringOrDefault(v, "log_output", "stderr"),
		ConfigFile:      v.ConfigFileUsed(),
	}, nil
}

// HasGitLabToken returns true if a personal access token is configured.
func (c *Config) HasGitLabToken() bool {
	return c.GitLabToken != ""
}

// loadEnvFiles loads .env then .env.local; neither is required.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func stringOrDefault(v *viper.Viper, key, defaultValue string) string {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value
	}
	return defaultValue
}

// positiveInt parses strictly so "invalid" falls back instead of becoming 0.
func positiveInt(v *viper.Viper, key string, defaultValue int) int {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func positiveDuration(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
