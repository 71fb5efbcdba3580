package auth

import "time"

// Session and User mirror the account service's tables. This module only
// reads them; the account service owns their schema.
type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null"`
}

type User struct {
	UserID string `gorm:"primaryKey" json:"user_id"`
	Role   string `gorm:"default:'user'" json:"role"`
}

func (Session) TableName() string { return "app_auth.sessions" }
func (User) TableName() string    { return "app_auth.users" }
