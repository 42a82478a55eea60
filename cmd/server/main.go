package main

import (
	"log"

	"github.com/balanceseekr/internal/config"
	"github.com/balanceseekr/internal/db"
	"github.com/balanceseekr/internal/handler"
	"github.com/balanceseekr/internal/router"
	"github.com/balanceseekr/internal/service"
)

func main() {
	cfg := config.Load()

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 按配置创建初始管理账号（两项均非空时生效）
	if err := db.EnsureUser(cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		log.Fatalf("failed to ensure super root user: %v", err)
	}

	cipher, err := service.NewJournalCipher(cfg.JournalSecret)
	if err != nil {
		log.Fatalf("failed to initialize journal cipher: %v", err)
	}

	// 设置并运行 Gin 服务器
	api := handler.NewAPI(db.DB, cipher)
	r := router.SetupRouter(cfg, api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
