package model

import "time"

type Comment struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	ConfessionID uint64    `gorm:"not null;index" json:"confession_id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	AuthorID     *uint64   `gorm:"index" json:"author_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	Confession *Confession `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
