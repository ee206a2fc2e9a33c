// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package persistence

import (
	gormseeder "github.com/kachit/gorm-seeder"
	"gorm.io/gorm"
)

// settingsSeederRows is the batch size gorm-seeder uses for the single
// settings row.
const settingsSeederRows = 1

// SettingsSeeder seeds the initial Settings row, the same
// gorm_seeder.SeederAbstract embedding pattern the teacher's
// TalkgroupsSeeder uses.
type SettingsSeeder struct {
	gormseeder.SeederAbstract
}

// NewSettingsSeeder builds a SettingsSeeder with cfg's batch configuration.
func NewSettingsSeeder(cfg gormseeder.SeederConfiguration) SettingsSeeder {
	return SettingsSeeder{gormseeder.NewSeederAbstract(cfg)}
}

// Seed inserts the initial Settings row.
func (s *SettingsSeeder) Seed(db *gorm.DB) error {
	settings := []Settings{{HasSeeded: true}}
	return db.CreateInBatches(settings, s.Configuration.Rows).Error //nolint:wrapcheck
}

// Clear is a no-op: the settings row is never bulk-cleared.
func (s *SettingsSeeder) Clear(_ *gorm.DB) error {
	return nil
}
