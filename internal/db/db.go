// Package db opens the GORM connection and applies the ordered schema
// migration list. Migrations run exactly once; applied ids are recorded
// in schema_migrations.
package db

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/memory"
)

// Connect opens the database for the given driver ("sqlite" or "mysql")
// and brings the schema up to date.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

type schemaMigration struct {
	ID        string    `gorm:"primaryKey;size:64"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

type migration struct {
	id  string
	run func(db *gorm.DB) error
}

// The list is append-only: never reorder or edit an entry that has
// shipped; add a new one.
var migrations = []migration{
	{
		id: "0001_core_tables",
		run: func(db *gorm.DB) error {
			return createTables(db,
				&memory.ChatFile{},
				&memory.Memory{},
				&memory.Person{},
				&memory.Note{},
			)
		},
	},
	{
		id: "0002_recommendation_jobs",
		run: func(db *gorm.DB) error {
			return createTables(db, &memory.Job{})
		},
	},
}

func createTables(db *gorm.DB, models ...any) error {
	for _, m := range models {
		if db.Migrator().HasTable(m) {
			continue
		}
		if err := db.Migrator().CreateTable(m); err != nil {
			return err
		}
	}
	return nil
}

// Migrate applies every unapplied migration in order.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var n int64
		if err := db.Model(&schemaMigration{}).Where("id = ?", m.id).Count(&n).Error; err != nil {
			return fmt.Errorf("checking migration %s: %w", m.id, err)
		}
		if n > 0 {
			continue
		}
		if err := m.run(db); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.id, err)
		}
		if err := db.Create(&schemaMigration{ID: m.id}).Error; err != nil {
			return fmt.Errorf("recording migration %s: %w", m.id, err)
		}
	}
	return nil
}
