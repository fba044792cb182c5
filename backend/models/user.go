package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	Model
	Username          string `gorm:"uniqueIndex;not null" json:"username"`
	Email             string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash      string `gorm:"not null" json:"-"`
	Role              string `gorm:"default:user;not null" json:"role"`
	PreferredLanguage string `gorm:"size:2;default:fr" json:"preferred_language"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type LoginHistory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	LoginTime time.Time `gorm:"index;not null" json:"login_time"`
}

func (LoginHistory) TableName() string { return "login_history" }
