package badge

import (
	"strings"
	"time"
)

// DayOf 将时间换算到设备本地时区后截断到日历日零点。
// 所有"今天"与跨天比较统一走这里，保证三个计算器使用同一套时区口径。
// 先 In(time.Local) 再截断：数据库驱动读回的时间往往挂着 UTC 或重建的
// 固定时区，直接截断会让同一天的记录落进不同的 map 键。
func DayOf(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// WordCount 按空白切分正文并忽略空 token
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// TaskStreak 计算以 today 结尾的任务连胜天数。
// 单日完成数达到 TasksPerDayGoal 视为达标；今天未达标则连胜为 0。
func TaskStreak(records []TaskRecord, today time.Time) int {
	counts := taskCountsByDay(records)

	streak := 0
	for day := DayOf(today); counts[day] >= TasksPerDayGoal; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// TaskGoalMetOn 判断指定日期的任务完成数是否达标
func TaskGoalMetOn(records []TaskRecord, day time.Time) bool {
	return taskCountsByDay(records)[DayOf(day)] >= TasksPerDayGoal
}

func taskCountsByDay(records []TaskRecord) map[time.Time]int {
	counts := make(map[time.Time]int, len(records))
	for _, record := range records {
		if !record.Done || record.CompletedAt == nil || record.CompletedAt.IsZero() {
			continue
		}
		counts[DayOf(*record.CompletedAt)]++
	}
	return counts
}

// JournalStreak 计算以 today 结尾的日记连胜天数。
// 当天只要有一篇字数不低于 JournalStreakWords 的日记即达标。
func JournalStreak(entries []JournalRecord, today time.Time) int {
	qualified := journalDays(entries)

	streak := 0
	for day := DayOf(today); qualified[day]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

func journalDays(entries []JournalRecord) map[time.Time]bool {
	days := make(map[time.Time]bool, len(entries))
	for _, entry := range entries {
		if entry.Date.IsZero() {
			continue
		}
		if WordCount(entry.Content) >= JournalStreakWords {
			days[DayOf(entry.Date)] = true
		}
	}
	return days
}

// DeepReflectionDate 返回第一篇字数不低于 DeepReflectionWords 的日记所在日期。
// 按时间顺序取最早的一篇，徽章的获得日期回溯到该天而不是今天。
func DeepReflectionDate(entries []JournalRecord) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, entry := range entries {
		if entry.Date.IsZero() {
			continue
		}
		if WordCount(entry.Content) < DeepReflectionWords {
			continue
		}
		if !found || entry.Date.Before(earliest) {
			earliest = entry.Date
			found = true
		}
	}
	if !found {
		return time.Time{}, false
	}
	return DayOf(earliest), true
}

// HabitStreak 计算以 today 结尾的习惯连胜天数。
// 某天达标要求每个活跃习惯当天都有 completed=true 的打卡；
// 没有活跃习惯时任何一天都不达标，连胜恒为 0。
func HabitStreak(activeIDs []uint, logs []HabitLogRecord, today time.Time) int {
	if len(activeIDs) == 0 {
		return 0
	}
	byDay := habitCompletionByDay(logs)

	streak := 0
	for day := DayOf(today); allHabitsDone(activeIDs, byDay[day]); day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// AllHabitsDoneOn 判断指定日期是否完成了全部活跃习惯
func AllHabitsDoneOn(activeIDs []uint, logs []HabitLogRecord, day time.Time) bool {
	if len(activeIDs) == 0 {
		return false
	}
	byDay := habitCompletionByDay(logs)
	return allHabitsDone(activeIDs, byDay[DayOf(day)])
}

func habitCompletionByDay(logs []HabitLogRecord) map[time.Time]map[uint]bool {
	byDay := make(map[time.Time]map[uint]bool, len(logs))
	for _, entry := range logs {
		if entry.Date.IsZero() {
			continue
		}
		day := DayOf(entry.Date)
		if byDay[day] == nil {
			byDay[day] = make(map[uint]bool)
		}
		if entry.Completed {
			byDay[day][entry.HabitID] = true
		}
	}
	return byDay
}

func allHabitsDone(activeIDs []uint, done map[uint]bool) bool {
	if len(activeIDs) == 0 {
		return false
	}
	for _, id := range activeIDs {
		if !done[id] {
			return false
		}
	}
	return true
}
