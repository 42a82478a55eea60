package db

import (
	"time"

	"gorm.io/gorm"
)

// EarnedBadge 记录一枚已获得的徽章
// BadgeID 指向目录中的徽章定义并建唯一索引；EarnedAt 是达成条件的日历日。
// 记录一旦写入即为既成事实：引擎只追加、只读取，从不更新或删除，
// 活动数据事后被删除也不影响已获得的徽章。
// AwardCode 是发放时生成的一次性凭证号，用于 API 展示。
type EarnedBadge struct {
	gorm.Model
	BadgeID   string    `gorm:"uniqueIndex;not null"`
	EarnedAt  time.Time `gorm:"not null"`
	AwardCode string
}

// TableName 与徽章目录的命名保持一致
func (EarnedBadge) TableName() string {
	return "earned_badges"
}
