// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

//nolint:wrapcheck
package persistence

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrate applies the additive schema migrations beyond the initial
// AutoMigrate, the same gormigrate shape as the teacher's
// internal/db/migration/migrations.go.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202607290001",
			Migrate: func(tx *gorm.DB) error {
				if db.Migrator().HasTable(&IdenRecord{}) && !db.Migrator().HasColumn(&IdenRecord{}, "trust") {
					return tx.Migrator().AddColumn(&IdenRecord{}, "trust")
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				if db.Migrator().HasTable(&IdenRecord{}) && db.Migrator().HasColumn(&IdenRecord{}, "trust") {
					return tx.Migrator().DropColumn(&IdenRecord{}, "trust")
				}
				return nil
			},
		},
	})

	return m.Migrate()
}
