package db

import "gorm.io/gorm"

// Schema is the Postgres schema holding every survey-domain table.
const Schema = "atlas"

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// EnsureUUIDExtension enables uuid_generate_v4(), which every table uses as
// its primary-key default.
func EnsureUUIDExtension(d *gorm.DB) error {
	return d.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error
}
