package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/balanceseekr/internal/config"
	"github.com/balanceseekr/internal/db"
	"github.com/balanceseekr/internal/service"
)

// 演示数据生成器：生成足以点亮连续徽章的任务、日记和习惯打卡
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	if err := db.EnsureUser("admin", "admin123"); err != nil {
		log.Fatal("创建演示用户失败:", err)
	}

	fmt.Println("开始生成演示数据...")

	seedTasks()
	seedJournal(cfg.JournalSecret)
	seedHabits()

	fmt.Println("演示数据生成完成！")
	fmt.Println("用户: admin (密码: admin123)")
	fmt.Println("启动服务后访问 /api/achievements 查看点亮的徽章")
}

// seedTasks 最近 7 天每天写入 3 条已完成任务
func seedTasks() {
	var count int64
	db.DB.Model(&db.Task{}).Count(&count)
	if count > 0 {
		fmt.Println("任务已存在，跳过创建")
		return
	}

	now := time.Now()
	for offset := 6; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset)
		for i := 1; i <= 3; i++ {
			completedAt := time.Date(day.Year(), day.Month(), day.Day(), 9+i, 0, 0, 0, day.Location())
			task := db.Task{
				Title:       fmt.Sprintf("演示任务 %s #%d", day.Format("01-02"), i),
				Note:        "演示数据",
				Done:        true,
				CompletedAt: &completedAt,
			}
			if err := db.DB.Create(&task).Error; err != nil {
				log.Fatal("创建任务失败:", err)
			}
		}
	}
	fmt.Println("任务: 7 天 x 3 条已完成")
}

// seedJournal 最近 3 天各写一篇长日记，其中一篇达到深度复盘门槛
func seedJournal(secret string) {
	var count int64
	db.DB.Model(&db.JournalEntry{}).Count(&count)
	if count > 0 {
		fmt.Println("日记已存在，跳过创建")
		return
	}

	cipher, err := service.NewJournalCipher(secret)
	if err != nil {
		log.Fatal("初始化日记加密失败:", err)
	}
	svc := service.NewJournalService(db.DB, cipher)

	now := time.Now()
	for offset := 2; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset)
		words := 360
		if offset == 0 {
			words = 520
		}
		content := fmt.Sprintf("# %s 复盘\n\n%s", day.Format("2006-01-02"),
			strings.TrimSpace(strings.Repeat("记录 ", words-2)))
		if _, err := svc.Create(service.JournalInput{
			Content:   content,
			Mood:      "calm",
			EntryDate: &day,
		}); err != nil {
			log.Fatal("创建日记失败:", err)
		}
	}
	fmt.Println("日记: 3 天长文，今天一篇达到深度复盘")
}

// seedHabits 创建两个习惯并回填 7 天打卡
func seedHabits() {
	var count int64
	db.DB.Model(&db.Habit{}).Count(&count)
	if count > 0 {
		fmt.Println("习惯已存在，跳过创建")
		return
	}

	habitSvc := service.NewHabitService(db.DB)
	logSvc := service.NewHabitLogService(db.DB)

	names := []string{"晨跑", "阅读"}
	now := time.Now()
	for _, name := range names {
		habit, err := habitSvc.Create(service.HabitInput{
			Name:           name,
			FrequencyUnit:  "daily",
			FrequencyCount: 1,
			Status:         "active",
		})
		if err != nil {
			log.Fatal("创建习惯失败:", err)
		}
		for offset := 6; offset >= 0; offset-- {
			day := now.AddDate(0, 0, -offset)
			if _, err := logSvc.Upsert(service.HabitLogInput{
				HabitID:   habit.ID,
				LogDate:   day,
				Completed: true,
				Source:    "seed",
			}); err != nil {
				log.Fatal("打卡失败:", err)
			}
		}
	}
	fmt.Println("习惯: 2 个，各 7 天连续打卡")
}
