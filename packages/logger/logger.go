// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config mirrors the log section of the service config.
type Config struct {
	Level      string `koanf:"level"`    // debug, info, warn, error
	Format     string `koanf:"format"`   // json, text
	Output     string `koanf:"output"`   // stdout, file
	Path       string `koanf:"path"`     // log file when output is file
	MaxSize    int    `koanf:"max_size"` // megabytes
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"` // days
	Compress   bool   `koanf:"compress"`
}

// Setup applies cfg to the standard logrus logger and returns it.
func Setup(cfg Config) *logrus.Logger {
	log := logrus.StandardLogger()
	Configure(log, cfg)
	return log
}

// Configure applies cfg to log.
func Configure(log *logrus.Logger, cfg Config) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(formatter(cfg.Format))
	log.SetOutput(output(cfg))
}

func formatter(format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	}
}

func output(cfg Config) io.Writer {
	if cfg.Output != "file" {
		return os.Stdout
	}
	path := cfg.Path
	if path == "" {
		path = "./logs/medsync.log"
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    orDefault(cfg.MaxSize, 10),
		MaxBackups: orDefault(cfg.MaxBackups, 7),
		MaxAge:     orDefault(cfg.MaxAge, 7),
		Compress:   cfg.Compress,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
