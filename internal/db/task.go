package db

import (
	"time"

	"gorm.io/gorm"
)

// Task 定义了待办任务模型
// Done 翻转为 true 时写入 CompletedAt，重新打开则清空；
// 徽章统计按 CompletedAt 的本地日历日归档，且直接查库（含软删除行），
// 当天完成又删除的任务仍计入当天完成数。
type Task struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Note        string
	Done        bool `gorm:"index"`
	DueDate     *time.Time
	CompletedAt *time.Time `gorm:"index"`
}
