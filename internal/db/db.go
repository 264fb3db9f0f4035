package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"armory/internal/config"
	"armory/internal/logger"
	"armory/internal/model"
)

// gormConfig turns driver-specific unique violations into gorm.ErrDuplicatedKey
// and sends GORM's own logging through zerolog.
func gormConfig(log zerolog.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Gorm(log),
	}
}

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// NewPostgres returns a connected GORM DB instance backed by PostgreSQL.
func NewPostgres(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// NewSQLite opens a pure-Go SQLite database at path.
// Writes are funneled through a single connection since SQLite has one writer.
func NewSQLite(path string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	}, gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Open connects to the database selected by cfg.DBDriver.
func Open(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		return NewPostgres(cfg.PostgresDSN, log)
	case "sqlite":
		return NewSQLite(cfg.SQLitePath, log)
	default:
		return NewMySQL(cfg.MySQLDSN, log)
	}
}

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Equipment{},
		&model.InventoryLogEntry{},
	}
}

// Migrate creates or updates the schema. With reset set, tables are
// dropped first in reverse dependency order.
func Migrate(db *gorm.DB, reset bool) error {
	models := Models()
	if reset {
		for i := len(models) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(models[i]); err != nil {
				return fmt.Errorf("drop table: %w", err)
			}
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
