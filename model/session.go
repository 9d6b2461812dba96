package model

import "time"

/*

AdminSession is a bearer session row.

Token: opaque random token, primary key, 256 bits of entropy
AdminId: owning admin, "belongs-to" relation
ExpiresAt: hard expiry; validation treats now >= ExpiresAt as invalid
ClientIP / UserAgent: creation metadata for the activity log

Rows are deleted on logout and replaced on refresh, never updated in place.
*/

type AdminSession struct {
	Token     string `gorm:"primaryKey"`
	CreatedAt time.Time
	AdminId   string `gorm:"index"`
	Admin     *Admin
	ExpiresAt time.Time
	ClientIP  string
	UserAgent string
}
