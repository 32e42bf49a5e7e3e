package config

import (
	"time"

	"medsync/packages/email"
	"medsync/packages/logger"
)

// AppConfig is the root of config.yaml.
type AppConfig struct {
	Server   ServerConfig   `koanf:"server"`
	GRPC     GRPCConfig     `koanf:"grpc"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Log      logger.Config  `koanf:"log"`
	Session  SessionConfig  `koanf:"session"`
	OTP      OTPConfig      `koanf:"otp"`
	Smtp     email.Config   `koanf:"smtp"`
	Mail     MailConfig     `koanf:"mail"`
	Storage  StorageConfig  `koanf:"storage"`
}

type GRPCConfig struct {
	Port int `koanf:"port"`
}

type ServerConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	Mode           string        `koanf:"mode"` // debug, release, test
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	BaseURL        string        `koanf:"base_url"` // used in mail links
}

type DatabaseConfig struct {
	Driver       string `koanf:"driver"` // postgres, sqlite
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	Username     string `koanf:"username"`
	Password     string `koanf:"password"`
	Database     string `koanf:"database"` // file path when driver is sqlite
	SSLMode      bool   `koanf:"sslmode"`
	LogLevel     string `koanf:"log_level"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	MaxLifetime  int    `koanf:"max_lifetime"` // seconds
}

type RedisConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	PoolSize int    `koanf:"pool_size"`
}

type SessionConfig struct {
	Store            string        `koanf:"store"` // redis, memory
	CookieName       string        `koanf:"cookie_name"`
	Secure           bool          `koanf:"secure"`
	TTL              time.Duration `koanf:"ttl"`
	IdleTimeout      time.Duration `koanf:"idle_timeout"`
	RotationInterval time.Duration `koanf:"rotation_interval"`
}

type OTPConfig struct {
	Expire time.Duration `koanf:"expire"`
}

type MailConfig struct {
	AppName string `koanf:"app_name"`
}

type StorageConfig struct {
	Driver    string   `koanf:"driver"` // local, s3
	LocalPath string   `koanf:"local_path"`
	S3        S3Config `koanf:"s3"`
}

type S3Config struct {
	Endpoint     string `koanf:"endpoint"`
	Region       string `koanf:"region"`
	Bucket       string `koanf:"bucket"`
	AccessKey    string `koanf:"access_key"`
	SecretKey    string `koanf:"secret_key"`
	UsePathStyle bool   `koanf:"use_path_style"`
}
