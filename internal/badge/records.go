package badge

import "time"

// TaskRecord 是任务完成情况的最小证据：是否完成与完成时间。
// CompletedAt 为空或零值的记录在统计时直接跳过。
type TaskRecord struct {
	Done        bool
	CompletedAt *time.Time
}

// JournalRecord 携带已解密的日记正文与所属日期
type JournalRecord struct {
	Date    time.Time
	Content string
}

// HabitLogRecord 表示某个习惯在某天的打卡结果
type HabitLogRecord struct {
	HabitID   uint
	Date      time.Time
	Completed bool
}
