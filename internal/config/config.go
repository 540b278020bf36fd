// internal/config/config.go
//
// 載入服務設定：先嘗試讀取 .env，再以 viper 套用預設值與環境變數覆寫。

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config 為服務設定。
type Config struct {
	Port            string
	LogLevel        logrus.Level
	LogFormat       string
	RateLimit       string // ulule/limiter 格式，例如 "100-M"；空字串表示停用
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AccountPrefix   string
}

// Load 讀取設定。.env 不存在時忽略。
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", LogFormatJSON)
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("READ_TIMEOUT", "10s")
	v.SetDefault("WRITE_TIMEOUT", "10s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "5s")
	v.SetDefault("ACCOUNT_PREFIX", "ACC")
	// 允許以空字串覆寫，例如 RATE_LIMIT= 代表停用限流。
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	cfg := &Config{
		Port:          v.GetString("PORT"),
		RateLimit:     strings.TrimSpace(v.GetString("RATE_LIMIT")),
		AccountPrefix: v.GetString("ACCOUNT_PREFIX"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		logrus.Warnf("PORT not set. Defaulting to %s", cfg.Port)
	}

	lvl, err := logrus.ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		lvl = logrus.InfoLevel
		logrus.Warnf("Invalid LOG_LEVEL (%q). Defaulting to %s", v.GetString("LOG_LEVEL"), lvl)
	}
	cfg.LogLevel = lvl

	switch f := strings.ToLower(v.GetString("LOG_FORMAT")); f {
	case LogFormatJSON, LogFormatText:
		cfg.LogFormat = f
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want %q or %q", f, LogFormatJSON, LogFormatText)
	}

	cfg.ReadTimeout = duration(v, "READ_TIMEOUT", 10*time.Second)
	cfg.WriteTimeout = duration(v, "WRITE_TIMEOUT", 10*time.Second)
	cfg.ShutdownTimeout = duration(v, "SHUTDOWN_TIMEOUT", 5*time.Second)

	return cfg, nil
}

// duration 解析時間長度；格式錯誤或非正值時回退為預設值並警告。
func duration(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logrus.Warnf("Invalid value for %s (%q). Defaulting to %s", key, raw, def)
		return def
	}
	return d
}
