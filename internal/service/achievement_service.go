package service

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/balanceseekr/internal/badge"
	"github.com/balanceseekr/internal/db"
	"github.com/google/uuid"
)

// AchievementService 是徽章解析器：汇总活动数据、计算连胜与单日达标、
// 对照已存徽章决定本次新发放哪些，并把新徽章落库。
// 徽章是粘性事实：只增不减，任何协作方故障都降级为尽力而为，绝不向上抛错。
type AchievementService struct {
	store  BadgeStore
	reader ActivityReader
	now    func() time.Time
}

// CategoryProgress 汇总单个类别当前的连胜与当日达标情况
type CategoryProgress struct {
	Category     badge.Category
	Streak       int
	TodayQualify bool
}

// NewAchievementService 构造 AchievementService。
// reader 可为 nil，此时完全依赖调用方传入的活动数据。
func NewAchievementService(store BadgeStore, reader ActivityReader) *AchievementService {
	return &AchievementService{
		store:  store,
		reader: reader,
		now:    time.Now,
	}
}

// Resolve 解析并返回全部已获得徽章（已存 ∪ 本次新发放，按 BadgeID 去重）。
// 入参是各类活动数据的兜底快照：读取器可用时优先用最新库内数据，
// 某一类读取失败则该类退回传入的快照，绝不让整次解析失败。
func (s *AchievementService) Resolve(
	tasks []badge.TaskRecord,
	entries []badge.JournalRecord,
	habitIDs []uint,
	logs []badge.HabitLogRecord,
) []db.EarnedBadge {
	stored, err := s.store.ListEarned()
	if err != nil {
		// 读失败按"尚无徽章"处理；Upsert 幂等，最坏情况是重复写入一次
		log.Printf("[achievement] list earned failed, resolving without stored badges: %v", err)
		stored = nil
	}

	storedIndex := make(map[string]db.EarnedBadge, len(stored))
	for _, earned := range stored {
		storedIndex[earned.BadgeID] = earned
	}

	tasks, entries, habitIDs, logs = s.refreshActivity(tasks, entries, habitIDs, logs)
	today := badge.DayOf(s.now())

	// 三个类别互不依赖，可并行计算；档位裁决要等全部结果就绪
	var (
		wg            sync.WaitGroup
		taskStreak    int
		taskToday     bool
		journalStreak int
		deepAt        time.Time
		deepFound     bool
		habitStreak   int
		habitToday    bool
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		taskStreak = badge.TaskStreak(tasks, today)
		taskToday = badge.TaskGoalMetOn(tasks, today)
	}()
	go func() {
		defer wg.Done()
		journalStreak = badge.JournalStreak(entries, today)
		deepAt, deepFound = badge.DeepReflectionDate(entries)
	}()
	go func() {
		defer wg.Done()
		habitStreak = badge.HabitStreak(habitIDs, logs, today)
		habitToday = badge.AllHabitsDoneOn(habitIDs, logs, today)
	}()
	wg.Wait()

	var fresh []db.EarnedBadge
	award := func(id string, earnedAt time.Time) {
		if _, exists := storedIndex[id]; exists {
			return
		}
		fresh = append(fresh, db.EarnedBadge{
			BadgeID:   id,
			EarnedAt:  earnedAt,
			AwardCode: uuid.NewString(),
		})
	}

	if taskToday {
		award(badge.TaskDaily, today)
	}
	if habitToday {
		award(badge.HabitDaily, today)
	}
	if deepFound {
		// 一次性徽章回溯到第一篇达标日记的日期
		award(badge.JournalDeepReflection, deepAt)
	}

	streaks := []struct {
		category badge.Category
		value    int
	}{
		{badge.CategoryTask, taskStreak},
		{badge.CategoryJournal, journalStreak},
		{badge.CategoryHabit, habitStreak},
	}
	for _, item := range streaks {
		if tier, ok := s.resolveStreakTier(storedIndex, item.category, item.value); ok {
			award(tier.ID, today)
		}
	}

	for i := range fresh {
		if err := s.store.Upsert(&fresh[i]); err != nil {
			// 写失败不致命：本次照常返回，下次解析会重算并重试写入
			log.Printf("[achievement] persist badge %s failed: %v", fresh[i].BadgeID, err)
		}
	}

	merged := make([]db.EarnedBadge, 0, len(stored)+len(fresh))
	merged = append(merged, stored...)
	merged = append(merged, fresh...)
	sort.SliceStable(merged, func(i, j int) bool {
		return badge.Rank(merged[i].BadgeID) < badge.Rank(merged[j].BadgeID)
	})

	return merged
}

// Progress 返回三个类别当前的连胜与当日达标情况，供进度展示使用
func (s *AchievementService) Progress(
	tasks []badge.TaskRecord,
	entries []badge.JournalRecord,
	habitIDs []uint,
	logs []badge.HabitLogRecord,
) []CategoryProgress {
	tasks, entries, habitIDs, logs = s.refreshActivity(tasks, entries, habitIDs, logs)
	today := badge.DayOf(s.now())
	journalStreak := badge.JournalStreak(entries, today)

	return []CategoryProgress{
		{
			Category:     badge.CategoryTask,
			Streak:       badge.TaskStreak(tasks, today),
			TodayQualify: badge.TaskGoalMetOn(tasks, today),
		},
		{
			Category:     badge.CategoryJournal,
			Streak:       journalStreak,
			TodayQualify: journalStreak >= 1,
		},
		{
			Category:     badge.CategoryHabit,
			Streak:       badge.HabitStreak(habitIDs, logs, today),
			TodayQualify: badge.AllHabitsDoneOn(habitIDs, logs, today),
		},
	}
}

// refreshActivity 尝试从读取器取最新活动数据，失败的类别保留传入快照
func (s *AchievementService) refreshActivity(
	tasks []badge.TaskRecord,
	entries []badge.JournalRecord,
	habitIDs []uint,
	logs []badge.HabitLogRecord,
) ([]badge.TaskRecord, []badge.JournalRecord, []uint, []badge.HabitLogRecord) {
	if s.reader == nil {
		return tasks, entries, habitIDs, logs
	}

	if fresh, err := s.reader.ListCompletedTasks(); err == nil {
		tasks = fresh
	} else {
		log.Printf("[achievement] read completed tasks failed, using caller snapshot: %v", err)
	}
	if fresh, err := s.reader.ListJournalEntries(); err == nil {
		entries = fresh
	} else {
		log.Printf("[achievement] read journal entries failed, using caller snapshot: %v", err)
	}
	if fresh, err := s.reader.ListActiveHabitIDs(); err == nil {
		habitIDs = fresh
	} else {
		log.Printf("[achievement] read active habits failed, using caller snapshot: %v", err)
	}
	if fresh, err := s.reader.ListHabitLogs(); err == nil {
		logs = fresh
	} else {
		log.Printf("[achievement] read habit logs failed, using caller snapshot: %v", err)
	}

	return tasks, entries, habitIDs, logs
}

// resolveStreakTier 在一个类别内做档位裁决：按天数从高到低找第一个
// 满足当前连胜的档位。若已存有任何更高档位则整个类别不发放
// （高档位已覆盖低档位，不回填）；每次调用一个类别至多新发一枚。
func (s *AchievementService) resolveStreakTier(
	storedIndex map[string]db.EarnedBadge,
	category badge.Category,
	streak int,
) (badge.Definition, bool) {
	for _, tier := range badge.StreakTiersDesc(category) {
		if streak < tier.DaysRequired {
			continue
		}
		if hasHigherStoredTier(storedIndex, category, tier.DaysRequired) {
			return badge.Definition{}, false
		}
		if _, exists := storedIndex[tier.ID]; exists {
			return badge.Definition{}, false
		}
		return tier, true
	}
	return badge.Definition{}, false
}

func hasHigherStoredTier(storedIndex map[string]db.EarnedBadge, category badge.Category, days int) bool {
	for id := range storedIndex {
		def, ok := badge.Lookup(id)
		if !ok {
			continue
		}
		if def.Category == category && def.IsStreak && def.DaysRequired > days {
			return true
		}
	}
	return false
}
