package handler

import (
	"github.com/balanceseekr/internal/service"
	"gorm.io/gorm"
)

// API 聚合各 HTTP 处理器共享的服务依赖
type API struct {
	db           *gorm.DB
	tasks        *service.TaskService
	journal      *service.JournalService
	habits       *service.HabitService
	habitLogs    *service.HabitLogService
	achievements *service.AchievementService
}

// NewAPI 构造处理器集合并完成服务装配
func NewAPI(gdb *gorm.DB, cipher *service.JournalCipher) *API {
	store := service.NewGormBadgeStore(gdb)
	reader := service.NewGormActivityReader(gdb, cipher)

	return &API{
		db:           gdb,
		tasks:        service.NewTaskService(gdb),
		journal:      service.NewJournalService(gdb, cipher),
		habits:       service.NewHabitService(gdb),
		habitLogs:    service.NewHabitLogService(gdb),
		achievements: service.NewAchievementService(store, reader),
	}
}

// DB 暴露底层 gorm 连接，供测试与脚本使用
func (a *API) DB() *gorm.DB {
	return a.db
}
