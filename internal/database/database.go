package database

import (
	"fmt"
	"log/slog"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"libportal/internal/domain"
)

// Connect opens the local client state database. The pure-Go modernc driver
// registers itself as "sqlite", so no cgo toolchain is needed.
func Connect(dsn string) (*gorm.DB, error) {
	slog.Debug("opening client state store", "dsn", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, fmt.Errorf("open state store %q: %w", dsn, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases from splitting per connection
	// and serializes writers on the file database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.Credential{}); err != nil {
		return nil, fmt.Errorf("migrate state store: %w", err)
	}
	return db, nil
}
