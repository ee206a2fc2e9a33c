// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package persistence is the decoder's optional durable store for the
// IDEN, patch/regroup and affiliation tables (spec §9's supplemented
// durability feature: restart-surviving trunking state). It follows the
// teacher's gorm/gormigrate/gorm-seeder/otelgorm shape almost line for
// line, swapped from Postgres to an embedded sqlite file since this
// decoder runs as a single unattended process rather than a clustered
// server.
package persistence

import (
	"fmt"
	"runtime"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/glebarez/sqlite"
	gormseeder "github.com/kachit/gorm-seeder"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// Store wraps the gorm handle backing durable trunking state.
type Store struct {
	db *gorm.DB
}

// Open establishes the database connection, runs migrations and seeds the
// settings row, mirroring the teacher's MakeDB lifecycle.
func Open(cfg *config.Config) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Persistence.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open persistence database: %w", err)
	}

	if cfg.Metrics.OTLPEndpoint != "" {
		if err := db.Use(otelgorm.NewPlugin()); err != nil {
			return nil, fmt.Errorf("failed to trace persistence database: %w", err)
		}
	}

	if err := db.AutoMigrate(&Settings{}); err != nil {
		return nil, fmt.Errorf("failed to migrate settings: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run persistence migrations: %w", err)
	}

	if err := db.AutoMigrate(&IdenRecord{}, &PatchRecord{}, &AffiliationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate trunking state tables: %w", err)
	}

	var settings Settings
	result := db.Order("id").Limit(1).Find(&settings)
	if result.RowsAffected == 0 {
		settings = Settings{HasSeeded: false}
		db.Create(&settings)
	}

	if !settings.HasSeeded {
		seeder := NewSettingsSeeder(gormseeder.SeederConfiguration{Rows: settingsSeederRows})
		stack := gormseeder.NewSeedersStack(db)
		stack.AddSeeder(&seeder)
		if err := stack.Seed(); err != nil {
			return nil, fmt.Errorf("failed to seed persistence database: %w", err)
		}
		settings.HasSeeded = true
		db.Save(&settings)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(runtime.GOMAXPROCS(0))
	const connsPerCPU = 10
	sqlDB.SetMaxOpenConns(runtime.GOMAXPROCS(0) * connsPerCPU)
	const maxIdleTime = 10 * time.Minute
	sqlDB.SetConnMaxIdleTime(maxIdleTime)

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close persistence database: %w", err)
	}
	return nil
}

// SaveIden upserts one IDEN table row, keyed by (wacn, sysid, channel_id).
func (s *Store) SaveIden(r IdenRecord) error {
	return s.db.Save(&r).Error //nolint:wrapcheck
}

// LoadIdens returns every persisted IDEN row.
func (s *Store) LoadIdens() ([]IdenRecord, error) {
	var rows []IdenRecord
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load IDEN rows: %w", err)
	}
	return rows, nil
}

// SavePatch upserts one patch/regroup super-group row.
func (s *Store) SavePatch(r PatchRecord) error {
	return s.db.Save(&r).Error //nolint:wrapcheck
}

// LoadPatches returns every persisted patch/regroup row.
func (s *Store) LoadPatches() ([]PatchRecord, error) {
	var rows []PatchRecord
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load patch rows: %w", err)
	}
	return rows, nil
}

// SaveAffiliation upserts one affiliation row.
func (s *Store) SaveAffiliation(r AffiliationRecord) error {
	return s.db.Save(&r).Error //nolint:wrapcheck
}

// LoadAffiliations returns every persisted affiliation row.
func (s *Store) LoadAffiliations() ([]AffiliationRecord, error) {
	var rows []AffiliationRecord
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load affiliation rows: %w", err)
	}
	return rows, nil
}
