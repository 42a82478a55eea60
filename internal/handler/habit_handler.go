package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/balanceseekr/internal/db"
	"github.com/balanceseekr/internal/service"
	"github.com/gin-gonic/gin"
)

const defaultHabitView = "monthly"

type habitPayload struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	FrequencyUnit  string `json:"frequency_unit"`
	FrequencyCount int    `json:"frequency_count"`
	TypeTag        string `json:"type_tag"`
	Status         string `json:"status"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

type habitLogPayload struct {
	LogDate   string `json:"log_date"` // 2006-01-02
	Completed *bool  `json:"completed"`
	Note      string `json:"note"`
}

// ListHabits 返回习惯列表 JSON
func (a *API) ListHabits(c *gin.Context) {
	filter := service.HabitFilter{
		Status:  c.Query("status"),
		TypeTag: c.Query("type_tag"),
		Search:  c.Query("search"),
	}

	habits, err := a.habits.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}

	respondSuccess(c, http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情
func (a *API) GetHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	habit, err := a.habits.Get(id)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	input, ok := a.parseHabitInput(c)
	if !ok {
		return
	}

	habit, err := a.habits.Create(input)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"habit": habitToPayload(*habit)})
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	input, ok := a.parseHabitInput(c)
	if !ok {
		return
	}

	habit, err := a.habits.Update(id, input)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// DeleteHabit 删除习惯
func (a *API) DeleteHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	if err := a.habits.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除习惯失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// GetHabitCalendar 返回日期区间内的打卡数据和统计
func (a *API) GetHabitCalendar(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	habit, err := a.habits.Get(habitID)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	view := c.DefaultQuery("view", defaultHabitView)
	start, end := resolveRange(c.Query("start"), view)

	filter := service.HabitLogFilter{HabitID: habit.ID, Start: start, End: end}

	logs, err := a.habitLogs.ListBetween(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取打卡记录失败")
		return
	}

	stats, err := a.habitLogs.StatsBetween(filter, *habit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "计算统计信息失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"habit": habitToPayload(*habit),
		"logs":  serializeHabitLogs(logs),
		"stats": serializeHabitStats(stats),
		"range": gin.H{"start": start.Format(dateFormat), "end": end.Format(dateFormat), "view": view},
	})
}

// LogHabit 对指定习惯打卡（幂等），并即时返回最新徽章列表
func (a *API) LogHabit(c *gin.Context) {
	habitID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	if _, err := a.habits.Get(habitID); err != nil {
		handleHabitError(c, err)
		return
	}

	var payload habitLogPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	logDate := time.Now()
	if payload.LogDate != "" {
		parsed, err := parseDateField(payload.LogDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的打卡日期")
			return
		}
		logDate = *parsed
	}

	completed := true
	if payload.Completed != nil {
		completed = *payload.Completed
	}

	record, err := a.habitLogs.Upsert(service.HabitLogInput{
		HabitID:   habitID,
		LogDate:   logDate,
		Completed: completed,
		Source:    "manual",
		Note:      payload.Note,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "打卡失败")
		return
	}

	// 打卡可能点亮徽章，顺带解析一次
	earned := a.achievements.Resolve(nil, nil, nil, nil)

	respondSuccess(c, http.StatusOK, gin.H{
		"log":    serializeHabitLog(*record),
		"badges": earnedToPayload(earned),
	})
}

// DeleteHabitLog 删除打卡记录
func (a *API) DeleteHabitLog(c *gin.Context) {
	logID, err := parseUintParam(c, "logId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的打卡记录ID")
		return
	}

	if err := a.habitLogs.Delete(logID); err != nil {
		respondError(c, http.StatusInternalServerError, "删除打卡记录失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func (a *API) parseHabitInput(c *gin.Context) (service.HabitInput, bool) {
	var payload habitPayload
	if !bindJSON(c, &payload, "无效的习惯数据") {
		return service.HabitInput{}, false
	}

	startDate, err := parseDateField(payload.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的开始日期")
		return service.HabitInput{}, false
	}
	endDate, err := parseDateField(payload.EndDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的结束日期")
		return service.HabitInput{}, false
	}

	return service.HabitInput{
		Name:           payload.Name,
		Description:    payload.Description,
		FrequencyUnit:  payload.FrequencyUnit,
		FrequencyCount: payload.FrequencyCount,
		TypeTag:        payload.TypeTag,
		Status:         payload.Status,
		StartDate:      startDate,
		EndDate:        endDate,
	}, true
}

// resolveRange 按视图类型计算查询区间，start 为空时以今天为基准
func resolveRange(startRaw, view string) (time.Time, time.Time) {
	base := time.Now().In(time.Local)
	if startRaw != "" {
		if parsed, err := time.ParseInLocation(dateFormat, startRaw, time.Local); err == nil {
			base = parsed
		}
	}

	switch view {
	case "weekly":
		weekday := int(base.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, base.Location()).AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 6)
	default:
		start := time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, base.Location())
		return start, start.AddDate(0, 1, -1)
	}
}

func habitToPayload(habit db.Habit) gin.H {
	payload := gin.H{
		"id":              habit.ID,
		"name":            habit.Name,
		"description":     habit.Description,
		"frequency_unit":  habit.FrequencyUnit,
		"frequency_count": habit.FrequencyCount,
		"type_tag":        habit.TypeTag,
		"status":          habit.Status,
	}
	if habit.StartDate != nil {
		payload["start_date"] = habit.StartDate.Format(dateFormat)
	}
	if habit.EndDate != nil {
		payload["end_date"] = habit.EndDate.Format(dateFormat)
	}
	return payload
}

func serializeHabitLog(record db.HabitLog) gin.H {
	return gin.H{
		"id":        record.ID,
		"habit_id":  record.HabitID,
		"log_date":  record.LogDate.Format(dateFormat),
		"completed": record.Completed,
		"source":    record.Source,
		"note":      record.Note,
	}
}

func serializeHabitLogs(records []db.HabitLog) []gin.H {
	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, serializeHabitLog(record))
	}
	return items
}

func serializeHabitStats(stats *service.HabitStats) gin.H {
	return gin.H{
		"completed_count": stats.CompletedCount,
		"target_count":    stats.TargetCount,
		"completion_rate": stats.CompletionRate,
		"current_streak":  stats.CurrentStreak,
		"longest_streak":  stats.LongestStreak,
	}
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrHabitInvalidFrequency):
		respondError(c, http.StatusBadRequest, "习惯频率配置不合法")
	default:
		respondError(c, http.StatusInternalServerError, "习惯操作失败")
	}
}
