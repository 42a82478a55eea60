package db

import (
	"time"

	"gorm.io/gorm"
)

// JournalEntry 定义了日记模型
// Content 存储加密后的 base64 密文，明文不落库；
// EntryDate 记录日记归属的日历日，连胜统计以此为准。
type JournalEntry struct {
	gorm.Model
	Content   string `gorm:"not null"`
	Mood      string
	EntryDate time.Time `gorm:"index"`
}
