package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/balanceseekr/internal/db"
	"github.com/balanceseekr/internal/service"
	"github.com/gin-gonic/gin"
)

type taskPayload struct {
	Title   string `json:"title"`
	Note    string `json:"note"`
	DueDate string `json:"due_date"`
}

// ListTasks 返回任务列表 JSON
func (a *API) ListTasks(c *gin.Context) {
	filter := service.TaskFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	tasks, err := a.tasks.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取任务列表失败")
		return
	}

	items := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskToPayload(task))
	}

	respondSuccess(c, http.StatusOK, gin.H{"tasks": items})
}

// GetTask 返回单个任务详情
func (a *API) GetTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	task, err := a.tasks.Get(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// CreateTask 创建任务
func (a *API) CreateTask(c *gin.Context) {
	var payload taskPayload
	if !bindJSON(c, &payload, "无效的任务数据") {
		return
	}

	input, ok := taskPayloadToInput(c, payload)
	if !ok {
		return
	}

	task, err := a.tasks.Create(input)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"task": taskToPayload(*task)})
}

// UpdateTask 更新任务
func (a *API) UpdateTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	var payload taskPayload
	if !bindJSON(c, &payload, "无效的任务数据") {
		return
	}

	input, ok := taskPayloadToInput(c, payload)
	if !ok {
		return
	}

	task, err := a.tasks.Update(id, input)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// CompleteTask 标记任务完成，并即时返回最新徽章列表
func (a *API) CompleteTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	task, err := a.tasks.Complete(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	// 完成动作可能点亮徽章，顺带解析一次
	earned := a.achievements.Resolve(nil, nil, nil, nil)

	respondSuccess(c, http.StatusOK, gin.H{
		"task":   taskToPayload(*task),
		"badges": earnedToPayload(earned),
	})
}

// ReopenTask 重新打开任务
func (a *API) ReopenTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	task, err := a.tasks.Reopen(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// DeleteTask 删除任务
func (a *API) DeleteTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	if err := a.tasks.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除任务失败")
		return
	}

	respondSuccess(c, http.StatusOK, nil)
}

func taskPayloadToInput(c *gin.Context, payload taskPayload) (service.TaskInput, bool) {
	dueDate, err := parseDateField(payload.DueDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的截止日期")
		return service.TaskInput{}, false
	}

	return service.TaskInput{
		Title:   payload.Title,
		Note:    payload.Note,
		DueDate: dueDate,
	}, true
}

func taskToPayload(task db.Task) gin.H {
	payload := gin.H{
		"id":         task.ID,
		"title":      task.Title,
		"note":       task.Note,
		"done":       task.Done,
		"created_at": task.CreatedAt.Format(time.RFC3339),
	}
	if task.DueDate != nil {
		payload["due_date"] = task.DueDate.Format(dateFormat)
	}
	if task.CompletedAt != nil {
		payload["completed_at"] = task.CompletedAt.Format(time.RFC3339)
	}
	return payload
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, "任务不存在")
	case errors.Is(err, service.ErrTaskTitleRequired):
		respondError(c, http.StatusBadRequest, "任务标题不能为空")
	default:
		respondError(c, http.StatusInternalServerError, "任务操作失败")
	}
}
