package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one key of the key-value table backing dashboard storage.
// The whole COI collection lives in a single entry as a JSON array.
type KVEntry struct {
	// StorageKey is the lookup key, e.g. "coi-dashboard-data".
	StorageKey string `gorm:"column:storage_key;primaryKey;size:255"`

	// Payload holds the serialized value.
	Payload datatypes.JSON `gorm:"column:payload;not null"`

	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName pins the table created by the migrations.
func (KVEntry) TableName() string {
	return "kv_entries"
}
