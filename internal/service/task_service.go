package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/balanceseekr/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound 在指定任务不存在时返回
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskTitleRequired 在任务标题为空时返回
	ErrTaskTitleRequired = errors.New("task title is required")
)

// TaskService 负责任务数据的增删改查与完成状态流转
type TaskService struct {
	db *gorm.DB
}

// TaskFilter 描述列表过滤条件，Status 支持 open/done
type TaskFilter struct {
	Status string
	Search string
}

// TaskInput 定义创建/更新任务时可配置字段
type TaskInput struct {
	Title   string
	Note    string
	DueDate *time.Time
}

// NewTaskService 构造 TaskService
func NewTaskService(gdb *gorm.DB) *TaskService {
	return &TaskService{db: gdb}
}

// List 返回任务集合，支持基本筛选
func (s *TaskService) List(filter TaskFilter) ([]db.Task, error) {
	var tasks []db.Task

	query := s.db.Model(&db.Task{})

	switch strings.TrimSpace(strings.ToLower(filter.Status)) {
	case "open":
		query = query.Where("done = ?", false)
	case "done":
		query = query.Where("done = ?", true)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("title LIKE ? OR note LIKE ?", like, like)
	}

	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// Get 根据 ID 获取任务
func (s *TaskService) Get(id uint) (*db.Task, error) {
	var task db.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// Create 新建任务
func (s *TaskService) Create(input TaskInput) (*db.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleRequired
	}

	task := db.Task{
		Title:   title,
		Note:    strings.TrimSpace(input.Note),
		DueDate: input.DueDate,
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

// Update 更新任务基础字段，完成状态走 Complete/Reopen
func (s *TaskService) Update(id uint, input TaskInput) (*db.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleRequired
	}

	var existing db.Task
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	existing.Title = title
	existing.Note = strings.TrimSpace(input.Note)
	existing.DueDate = input.DueDate

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &existing, nil
}

// Complete 将任务标记为已完成并记录完成时间；重复完成保留首次时间
func (s *TaskService) Complete(id uint) (*db.Task, error) {
	var task db.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	if task.Done {
		return &task, nil
	}

	now := time.Now()
	task.Done = true
	task.CompletedAt = &now

	if err := s.db.Save(&task).Error; err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}
	return &task, nil
}

// Reopen 重新打开任务并清空完成时间
func (s *TaskService) Reopen(id uint) (*db.Task, error) {
	var task db.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	task.Done = false
	task.CompletedAt = nil

	if err := s.db.Select("done", "completed_at", "updated_at").Save(&task).Error; err != nil {
		return nil, fmt.Errorf("reopen task: %w", err)
	}
	return &task, nil
}

// Delete 删除任务（软删除，完成记录仍参与当天的徽章统计）
func (s *TaskService) Delete(id uint) error {
	if err := s.db.Delete(&db.Task{}, id).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
