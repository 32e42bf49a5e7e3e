package database

import (
	"fmt"
	"time"

	"medsync/packages/database"
	"medsync/services/medsync/config"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const serviceName = "medsync"

var (
	PostgresDB *gorm.DB
	RedisDB    *database.RedisClient
)

// InitDatabase opens the relational store from config.Conf, and Redis
// when sessions live there.
func InitDatabase() error {
	var err error
	PostgresDB, err = OpenSQL(config.Conf.Database)
	if err != nil {
		return err
	}
	if config.Conf.Session.Store != "redis" {
		return nil
	}

	redisConf := config.Conf.Redis
	RedisDB, err = database.InitRedis(&database.RedisConfig{
		ServiceName: serviceName,
		Host:        redisConf.Host,
		Port:        redisConf.Port,
		Password:    redisConf.Password,
		DB:          redisConf.DB,
		PoolSize:    redisConf.PoolSize,
	})
	return err
}

// OpenSQL opens postgres, or an sqlite file for single-node development.
func OpenSQL(conf config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := conf.LogLevel
	if logLevel == "" {
		logLevel = "silent"
	}

	switch conf.Driver {
	case "", "postgres":
		return database.InitPostgres(&database.PostgresConfig{
			ServiceName:     serviceName,
			Username:        conf.Username,
			Password:        conf.Password,
			Host:            conf.Host,
			Port:            conf.Port,
			Database:        conf.Database,
			SSLMode:         conf.SSLMode,
			LogLevel:        logLevel,
			MaxIdleConns:    conf.MaxIdleConns,
			MaxOpenConns:    conf.MaxOpenConns,
			ConnMaxLifetime: time.Duration(conf.MaxLifetime) * time.Second,
		})
	case "sqlite":
		return OpenSQLite(conf.Database, logLevel)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}
}

// OpenSQLite opens dsn with a single connection; sqlite has no row locks,
// so serializing on one connection keeps counter transactions exclusive.
func OpenSQLite(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := database.ConfigurePool(db, 1, 1, 0); err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases both connections.
func Close() {
	if PostgresDB != nil {
		if sqlDB, err := PostgresDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if RedisDB != nil {
		_ = RedisDB.Close()
	}
}
