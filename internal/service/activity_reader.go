package service

import (
	"fmt"

	"github.com/balanceseekr/internal/badge"
	"github.com/balanceseekr/internal/db"
	"gorm.io/gorm"
)

// ActivityReader 是徽章引擎消费活动数据的只读契约。
// 日记正文必须已解密；任何方法失败时解析器按类别降级到调用方传入的数据。
type ActivityReader interface {
	ListCompletedTasks() ([]badge.TaskRecord, error)
	ListJournalEntries() ([]badge.JournalRecord, error)
	ListActiveHabitIDs() ([]uint, error)
	ListHabitLogs() ([]badge.HabitLogRecord, error)
}

// GormActivityReader 从持久层直读活动数据。
// 任务查询带 Unscoped：当天完成后又被删除的任务仍计入当天完成数。
type GormActivityReader struct {
	db     *gorm.DB
	cipher *JournalCipher
}

// NewGormActivityReader 构造 GormActivityReader
func NewGormActivityReader(gdb *gorm.DB, cipher *JournalCipher) *GormActivityReader {
	return &GormActivityReader{db: gdb, cipher: cipher}
}

// ListCompletedTasks 返回全部已完成任务记录，含软删除行
func (r *GormActivityReader) ListCompletedTasks() ([]badge.TaskRecord, error) {
	var tasks []db.Task
	if err := r.db.Unscoped().
		Where("done = ? AND completed_at IS NOT NULL", true).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}

	records := make([]badge.TaskRecord, 0, len(tasks))
	for _, task := range tasks {
		records = append(records, badge.TaskRecord{Done: task.Done, CompletedAt: task.CompletedAt})
	}
	return records, nil
}

// ListJournalEntries 返回全部日记记录并解密正文。
// 解密失败的记录直接跳过，不影响其余日记的统计。
func (r *GormActivityReader) ListJournalEntries() ([]badge.JournalRecord, error) {
	var entries []db.JournalEntry
	if err := r.db.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}

	records := make([]badge.JournalRecord, 0, len(entries))
	for _, entry := range entries {
		content, err := r.cipher.Decrypt(entry.Content)
		if err != nil {
			continue
		}
		records = append(records, badge.JournalRecord{Date: entry.EntryDate, Content: content})
	}
	return records, nil
}

// ListActiveHabitIDs 返回当前活跃习惯的 ID 集合
func (r *GormActivityReader) ListActiveHabitIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&db.Habit{}).Where("status = ?", "active").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list active habit ids: %w", err)
	}
	return ids, nil
}

// ListHabitLogs 返回全部打卡记录
func (r *GormActivityReader) ListHabitLogs() ([]badge.HabitLogRecord, error) {
	var logs []db.HabitLog
	if err := r.db.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}

	records := make([]badge.HabitLogRecord, 0, len(logs))
	for _, entry := range logs {
		records = append(records, badge.HabitLogRecord{
			HabitID:   entry.HabitID,
			Date:      entry.LogDate,
			Completed: entry.Completed,
		})
	}
	return records, nil
}
