package domain

import "time"

// Credential is the single persisted slot holding the bearer token.
type Credential struct {
	Name      string    `gorm:"primaryKey;size:64"`
	Token     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Credential) TableName() string { return "credentials" }
