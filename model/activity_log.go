package model

import "time"

// AdminActivityLog records one admin action (login, logout, password change,
// classification edit, sync, import). Append-only.
type AdminActivityLog struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	AdminId   string `gorm:"index"`
	Action    string
	Detail    string
	ClientIP  string
}
