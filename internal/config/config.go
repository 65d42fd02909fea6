// Package config resolves runtime settings from .env, environment variables,
// an optional YAML file and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	constants "github.com/CodeAndHammer/tradukilo/internal/constants"
	"github.com/CodeAndHammer/tradukilo/internal/provider"
)

type Config struct {
	Port         string
	IsProduction bool
	LogLevel     string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimiterTTL    time.Duration
	ProviderTimeout   time.Duration
	SpeechTempDir     string

	Provider provider.Config
}

// Flags holds the values of the command line flags registered by BindFlags.
type Flags struct {
	CfgFile             string
	Port                string
	TranslationProvider string
	SpeechProvider      string
}

// BindFlags registers the server flags on cmd and binds them to v.
func BindFlags(cmd *cobra.Command, v *viper.Viper, flags *Flags) {
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is ./tradukilo.yaml)")
	cmd.Flags().StringVarP(&flags.Port, "port", "p", "8080", "HTTP listen port")
	cmd.Flags().StringVar(&flags.TranslationProvider, "translation-provider", "openai", "Translation provider: openai, gemini or lambda")
	cmd.Flags().StringVar(&flags.SpeechProvider, "speech-provider", "openai", "Speech provider: openai or espeak")

	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("translation_provider", cmd.Flags().Lookup("translation-provider"))
	_ = v.BindPFlag("speech_provider", cmd.Flags().Lookup("speech-provider"))
}

func setDefaults(v *viper.Viper) {
	def := provider.DefaultConfig()

	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("gin_mode", "")
	v.SetDefault("log_level", "info")

	v.SetDefault("rate_limit_requests", constants.DefaultRateLimitRequests)
	v.SetDefault("rate_limit_window", constants.DefaultRateLimitWindow)
	v.SetDefault("rate_limiter_ttl", time.Hour)
	v.SetDefault("provider_timeout", 30*time.Second)
	v.SetDefault("speech_temp_dir", "")

	v.SetDefault("provider_rps", def.RequestsPerSecond)
	v.SetDefault("provider_burst", def.Burst)
	v.SetDefault("breaker_failures", def.BreakerFailures)
	v.SetDefault("breaker_timeout", def.BreakerTimeout)

	v.SetDefault("translation_provider", def.TranslationProvider)
	v.SetDefault("speech_provider", def.SpeechProvider)
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("openai_model", def.OpenAIModel)
	v.SetDefault("openai_tts_model", def.OpenAITTSModel)
	v.SetDefault("openai_tts_voice", def.OpenAITTSVoice)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", def.GeminiModel)
	v.SetDefault("aws_region", "")
	v.SetDefault("translator_lambda", "")
	v.SetDefault("espeak_binary", def.ESpeakBinary)
}

// Load reads .env into the process environment, then resolves every key
// through v. cfgFile may be empty, in which case ./tradukilo.yaml is used if
// present.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("tradukilo")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{
		Port:              v.GetString("port"),
		IsProduction:      v.GetString("gin_mode") == "release" || v.GetString("env") == "production",
		LogLevel:          v.GetString("log_level"),
		RateLimitRequests: v.GetInt("rate_limit_requests"),
		RateLimitWindow:   v.GetDuration("rate_limit_window"),
		RateLimiterTTL:    v.GetDuration("rate_limiter_ttl"),
		ProviderTimeout:   v.GetDuration("provider_timeout"),
		SpeechTempDir:     v.GetString("speech_temp_dir"),
		Provider: provider.Config{
			TranslationProvider: strings.ToLower(v.GetString("translation_provider")),
			SpeechProvider:      strings.ToLower(v.GetString("speech_provider")),
			OpenAIKey:           v.GetString("openai_api_key"),
			OpenAIBaseURL:       v.GetString("openai_base_url"),
			OpenAIModel:         v.GetString("openai_model"),
			OpenAITTSModel:      v.GetString("openai_tts_model"),
			OpenAITTSVoice:      v.GetString("openai_tts_voice"),
			GeminiKey:           v.GetString("gemini_api_key"),
			GeminiModel:         v.GetString("gemini_model"),
			AWSRegion:           v.GetString("aws_region"),
			TranslatorLambda:    v.GetString("translator_lambda"),
			ESpeakBinary:        v.GetString("espeak_binary"),
			RequestsPerSecond:   v.GetFloat64("provider_rps"),
			Burst:               v.GetInt("provider_burst"),
			BreakerFailures:     v.GetUint32("breaker_failures"),
			BreakerTimeout:      v.GetDuration("breaker_timeout"),
		},
	}

	if cfg.SpeechTempDir == "" {
		cfg.SpeechTempDir = os.TempDir()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.RateLimitRequests)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimitWindow)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout)
	}
	return nil
}
