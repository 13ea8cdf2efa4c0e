package entity

import (
	"time"

	"gorm.io/gorm"
)

// Stock is a watch-list entry. Exchange is HOSE, HNX or UPCOM.
type Stock struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"not null;uniqueIndex"`
	Name      string         `gorm:"not null"`
	Exchange  string         `gorm:"not null;default:HOSE"`
	Active    bool           `gorm:"not null;default:true"`
	Priority  int            `gorm:"not null;default:0"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
