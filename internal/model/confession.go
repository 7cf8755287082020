package model

import "time"

// Confession AuthorID 为空表示匿名；CommunityID 为空表示只出现在全站流
type Confession struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Upvotes     int       `gorm:"not null;default:0" json:"upvotes"`
	AuthorID    *uint64   `gorm:"index:idx_author_time,priority:1" json:"author_id,omitempty"`
	CommunityID *uint64   `gorm:"index:idx_community_time,priority:1" json:"community_id,omitempty"`
	CreatedAt   time.Time `gorm:"index;index:idx_author_time,priority:2;index:idx_community_time,priority:2" json:"created_at"`

	Community *Community `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"-"`
}

// ConfessionFilter 零值字段表示不限制
type ConfessionFilter struct {
	Search      string
	Since       time.Time
	AuthorID    uint64
	CommunityID uint64
}
