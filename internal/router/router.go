package router

import (
	"github.com/balanceseekr/internal/config"
	"github.com/balanceseekr/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("balanceseekr_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.POST("/auth/login", handler.Login)
	r.GET("/auth/logout", handler.Logout)

	// 需要认证的业务路由
	authed := r.Group("/api")
	authed.Use(handler.AuthRequired())
	{
		authed.GET("/tasks", api.ListTasks)
		authed.GET("/tasks/:id", api.GetTask)
		authed.POST("/tasks", api.CreateTask)
		authed.PUT("/tasks/:id", api.UpdateTask)
		authed.PUT("/tasks/:id/complete", api.CompleteTask)
		authed.PUT("/tasks/:id/reopen", api.ReopenTask)
		authed.DELETE("/tasks/:id", api.DeleteTask)

		authed.GET("/journal", api.ListJournalEntries)
		authed.GET("/journal/:id", api.GetJournalEntry)
		authed.GET("/journal/:id/preview", api.PreviewJournalEntry)
		authed.POST("/journal", api.CreateJournalEntry)
		authed.PUT("/journal/:id", api.UpdateJournalEntry)
		authed.DELETE("/journal/:id", api.DeleteJournalEntry)

		authed.GET("/habits", api.ListHabits)
		authed.GET("/habits/:id", api.GetHabit)
		authed.POST("/habits", api.CreateHabit)
		authed.PUT("/habits/:id", api.UpdateHabit)
		authed.DELETE("/habits/:id", api.DeleteHabit)
		authed.GET("/habits/:id/calendar", api.GetHabitCalendar)
		authed.POST("/habits/:id/logs", api.LogHabit)
		authed.DELETE("/habits/:id/logs/:logId", api.DeleteHabitLog)

		authed.GET("/achievements", api.ListAchievements)
		authed.GET("/achievements/progress", api.GetAchievementProgress)
	}

	return r
}
