package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress      string        `mapstructure:"SERVER_ADDRESS"`       // e.g., ":8080"
	ServerWriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"` // must outlast a generation call
	AppEnv             string        `mapstructure:"APP_ENV"`              // "production" switches gin to release mode

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"` // "json" or "console"

	// Generation service. The credential is supplied per submission, never here.
	LLMBaseURL string `mapstructure:"LLM_BASE_URL"`
	LLMModelID string `mapstructure:"LLM_MODEL_ID"`

	// HTTP edge
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RedisAddr          string   `mapstructure:"REDIS_ADDR"` // empty disables the submit rate limit
	RateLimitPerMinute int      `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	// Static call-to-action widgets shown under a report
	CTABanner      string `mapstructure:"CTA_BANNER"`
	ContactPhone   string `mapstructure:"CONTACT_PHONE"`
	ContactLine    string `mapstructure:"CONTACT_LINE"`
	ContactLineURL string `mapstructure:"CONTACT_LINE_URL"`
	FooterNote     string `mapstructure:"FOOTER_NOTE"`

	// FileUsed is the config file that was read, empty when running on env vars only.
	FileUsed string `mapstructure:"-"`
}

var configKeys = map[string]any{
	"SERVER_ADDRESS":        ":8080",
	"SERVER_WRITE_TIMEOUT":  "180s",
	"APP_ENV":               "development",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
	"LLM_BASE_URL":          "https://generativelanguage.googleapis.com/v1beta/openai",
	"LLM_MODEL_ID":          "gemini-2.0-flash",
	"CORS_ALLOWED_ORIGINS":  []string{},
	"REDIS_ADDR":            "",
	"RATE_LIMIT_PER_MINUTE": 10,
	"CTA_BANNER":            "💡 喜歡這份專業建議嗎？裝修細節繁雜，建議直接與我們討論，避免踩雷！",
	"CONTACT_PHONE":         "📞 預約專線：09XX-XXX-XXX",
	"CONTACT_LINE":          "💬 點此加 Line 諮詢",
	"CONTACT_LINE_URL":      "",
	"FOOTER_NOTE":           "© 2025 易恩室內裝修設計有限公司 | AI 分析僅供參考，實際報價以現場丈量為準",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)     // Path to look for the config file in
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")

	// SetDefault also registers every key with AutomaticEnv so env-only setups unmarshal.
	for key, value := range configKeys {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.FileUsed = v.ConfigFileUsed()

	if err = config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) validate() error {
	if c.ServerAddress == "" {
		return errors.New("SERVER_ADDRESS is required")
	}
	if c.LLMModelID == "" {
		return errors.New("LLM_MODEL_ID is required")
	}
	if c.RedisAddr != "" && c.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive when REDIS_ADDR is set")
	}
	return nil
}
