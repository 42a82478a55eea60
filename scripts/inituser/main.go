package main

import (
	"fmt"
	"log"

	"github.com/balanceseekr/internal/config"
	"github.com/balanceseekr/internal/db"
	"golang.org/x/crypto/bcrypt"
)

// 初始化默认管理员账号，已有用户时跳过
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	var count int64
	db.DB.Model(&db.User{}).Count(&count)
	if count > 0 {
		fmt.Println("用户已存在，无需初始化")
		return
	}

	username := cfg.SuperRootUserName
	if username == "" {
		username = "admin"
	}
	password := cfg.SuperRootPassword
	if password == "" {
		password = "admin123"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("密码加密失败:", err)
	}

	user := db.User{
		Username: username,
		Password: string(hashedPassword),
	}
	if err := db.DB.Create(&user).Error; err != nil {
		log.Fatal("创建用户失败:", err)
	}

	fmt.Printf("默认用户创建成功: %s\n", username)
	if cfg.SuperRootPassword == "" {
		fmt.Println("当前为默认密码，请尽快修改")
	}
}
