package models

import "time"

// LocalEntry is one key/value pair of terminal-local storage (language preference and similar).
type LocalEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:128"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LocalEntry) TableName() string { return "local_entries" }
