package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all settings of the translator.
type Config struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`

	BatchSize      int `mapstructure:"batch_size"`       // text segments per API call
	MaxRetries     int `mapstructure:"max_retries"`      // attempts per batch
	RetryBaseDelay int `mapstructure:"retry_base_delay"` // seconds, doubled per failed attempt
	RequestDelay   int `mapstructure:"request_delay"`    // seconds between API calls
	RequestTimeout int `mapstructure:"request_timeout"`  // seconds per API call

	PromptFile string `mapstructure:"prompt_file"`
	InputDir   string `mapstructure:"input_dir"`
	OutputDir  string `mapstructure:"output_dir"`

	// Minimum characters the structural PowerPoint extractor must find on
	// a slide before the fallback engines are skipped.
	MinSlideCoverage int `mapstructure:"min_slide_coverage"`

	Debug bool `mapstructure:"debug"`
}

// NewDefaultConfig returns the built-in defaults. The API defaults target
// Gemini through its OpenAI-compatible endpoint.
func NewDefaultConfig() *Config {
	return &Config{
		BaseURL:          "https://generativelanguage.googleapis.com/v1beta/openai/",
		Model:            "gemini-2.0-flash",
		BatchSize:        50,
		MaxRetries:       3,
		RetryBaseDelay:   2,
		RequestDelay:     2,
		RequestTimeout:   120,
		PromptFile:       "translator-system-prompt.txt",
		InputDir:         "input",
		OutputDir:        "output",
		MinSlideCoverage: 25,
	}
}

// LoadConfig loads configuration from a file, falling back to defaults when
// no file exists. A missing API key is not an error here: the CLI warns once
// and translation fails only when a call is actually attempted.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.SetConfigName(".office-translator")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("OFFICE_TRANSLATOR")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// The original tooling for this pipeline reads GEMINI_API_KEY, keep
	// honoring it so existing setups work unchanged.
	if config.APIKey == "" {
		config.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return &config, nil
}

// setDefaults registers default values with viper so a partial config file
// only overrides what it names. Every key needs an entry here: AutomaticEnv
// values only reach Unmarshal for keys viper already knows about.
func setDefaults(v *viper.Viper) {
	def := NewDefaultConfig()

	v.SetDefault("api_key", "")
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("model", def.Model)
	v.SetDefault("batch_size", def.BatchSize)
	v.SetDefault("max_retries", def.MaxRetries)
	v.SetDefault("retry_base_delay", def.RetryBaseDelay)
	v.SetDefault("request_delay", def.RequestDelay)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("prompt_file", def.PromptFile)
	v.SetDefault("input_dir", def.InputDir)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("min_slide_coverage", def.MinSlideCoverage)
	v.SetDefault("debug", false)
}

// RetryDelay returns the wait before the given retry attempt (1-based).
// Delay doubles per attempt starting from RetryBaseDelay.
func (c *Config) RetryDelay(attempt int) time.Duration {
	delay := time.Duration(c.RetryBaseDelay) * time.Second
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}
