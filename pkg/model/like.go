package model

import "time"

// Like is a single reaction on a meme
type Like struct {
	ID        uint `gorm:"primaryKey"`
	Filename  string
	Reaction  string
	CreatedAt time.Time
}

func (Like) TableName() string {
	return "likes"
}
