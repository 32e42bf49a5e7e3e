package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

var (
	Conf *AppConfig
	once sync.Once
	k    *koanf.Koanf
)

// EnvFile is loaded into the process environment before the yaml file.
var EnvFile = ".env"

// Load reads configPath, overlays environment variables and fills Conf.
func Load(configPath string) error {
	var err error
	once.Do(func() {
		if loadErr := godotenv.Load(EnvFile); loadErr != nil {
			logrus.WithError(loadErr).Debug("no .env file loaded")
		}

		k, Conf, err = read(configPath)
	})
	return err
}

func read(configPath string) (*koanf.Koanf, *AppConfig, error) {
	kk := koanf.New(".")

	if err := kk.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, nil, fmt.Errorf("load config file: %w", err)
	}

	// SERVER_PORT overrides server.port
	if err := kk.Load(env.Provider("", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}), nil); err != nil {
		logrus.WithError(err).Warn("load environment overrides")
	}

	conf := &AppConfig{}
	if err := kk.Unmarshal("", conf); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	conf.applyDefaults()

	return kk, conf, nil
}

// MustLoad exits the process when Load fails.
func MustLoad(configPath string) {
	if err := Load(configPath); err != nil {
		logrus.WithError(err).Fatal("load config")
	}
}

func GetString(key string) string {
	mustInit()
	return k.String(key)
}

func GetInt(key string) int {
	mustInit()
	return k.Int(key)
}

func GetBool(key string) bool {
	mustInit()
	return k.Bool(key)
}

func mustInit() {
	if k == nil {
		logrus.Fatal("config not loaded")
	}
}

// Reload re-reads configPath and replaces Conf.
func Reload(configPath string) error {
	if k == nil {
		return fmt.Errorf("config not loaded")
	}

	kk, conf, err := read(configPath)
	if err != nil {
		return err
	}
	k, Conf = kk, conf
	return nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9090
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Session.Store == "" {
		c.Session.Store = "redis"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "medsync_session"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = 30 * time.Minute
	}
	if c.Session.RotationInterval == 0 {
		c.Session.RotationInterval = 5 * time.Minute
	}
	if c.OTP.Expire == 0 {
		c.OTP.Expire = 600 * time.Second
	}
	if c.Mail.AppName == "" {
		c.Mail.AppName = "MedSync"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.LocalPath == "" {
		c.Storage.LocalPath = "./uploads"
	}
}
