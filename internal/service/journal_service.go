package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/balanceseekr/internal/badge"
	"github.com/balanceseekr/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrJournalEntryNotFound 在指定日记不存在时返回
	ErrJournalEntryNotFound = errors.New("journal entry not found")
	// ErrJournalContentRequired 在正文为空时返回
	ErrJournalContentRequired = errors.New("journal content is required")
)

// JournalService 负责日记的增删改查，正文加密后落库
type JournalService struct {
	db     *gorm.DB
	cipher *JournalCipher
}

// JournalInput 定义创建/更新日记时可配置字段
type JournalInput struct {
	Content   string
	Mood      string
	EntryDate *time.Time
}

// JournalEntryView 是解密后的日记视图，附带字数统计
type JournalEntryView struct {
	ID        uint
	Content   string
	Mood      string
	EntryDate time.Time
	WordCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JournalFilter 指定列表查询条件
type JournalFilter struct {
	Start *time.Time
	End   *time.Time
	Mood  string
}

// NewJournalService 构造 JournalService
func NewJournalService(gdb *gorm.DB, cipher *JournalCipher) *JournalService {
	return &JournalService{db: gdb, cipher: cipher}
}

// Create 加密正文并新建日记，EntryDate 缺省为当天
func (s *JournalService) Create(input JournalInput) (*JournalEntryView, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrJournalContentRequired
	}

	encrypted, err := s.cipher.Encrypt(content)
	if err != nil {
		return nil, fmt.Errorf("encrypt journal content: %w", err)
	}

	entryDate := time.Now()
	if input.EntryDate != nil {
		entryDate = *input.EntryDate
	}

	entry := db.JournalEntry{
		Content:   encrypted,
		Mood:      strings.TrimSpace(input.Mood),
		EntryDate: badge.DayOf(entryDate),
	}

	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}

	return s.toView(entry, content), nil
}

// Update 更新日记，正文重新加密
func (s *JournalService) Update(id uint, input JournalInput) (*JournalEntryView, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrJournalContentRequired
	}

	var existing db.JournalEntry
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalEntryNotFound
		}
		return nil, fmt.Errorf("find journal entry: %w", err)
	}

	encrypted, err := s.cipher.Encrypt(content)
	if err != nil {
		return nil, fmt.Errorf("encrypt journal content: %w", err)
	}

	existing.Content = encrypted
	existing.Mood = strings.TrimSpace(input.Mood)
	if input.EntryDate != nil {
		existing.EntryDate = badge.DayOf(*input.EntryDate)
	}

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update journal entry: %w", err)
	}

	return s.toView(existing, content), nil
}

// Get 返回解密后的单篇日记
func (s *JournalService) Get(id uint) (*JournalEntryView, error) {
	var entry db.JournalEntry
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalEntryNotFound
		}
		return nil, fmt.Errorf("get journal entry: %w", err)
	}

	content, err := s.cipher.Decrypt(entry.Content)
	if err != nil {
		return nil, fmt.Errorf("decrypt journal entry %d: %w", entry.ID, err)
	}

	return s.toView(entry, content), nil
}

// List 返回解密后的日记列表，按日期倒序。
// 解密失败的记录跳过并继续，不中断整个列表。
func (s *JournalService) List(filter JournalFilter) ([]JournalEntryView, error) {
	query := s.db.Model(&db.JournalEntry{})

	if filter.Start != nil {
		query = query.Where("entry_date >= ?", badge.DayOf(*filter.Start))
	}
	if filter.End != nil {
		query = query.Where("entry_date <= ?", badge.DayOf(*filter.End))
	}
	if filter.Mood != "" {
		query = query.Where("mood = ?", strings.TrimSpace(filter.Mood))
	}

	var entries []db.JournalEntry
	if err := query.Order("entry_date DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}

	views := make([]JournalEntryView, 0, len(entries))
	for _, entry := range entries {
		content, err := s.cipher.Decrypt(entry.Content)
		if err != nil {
			continue
		}
		views = append(views, *s.toView(entry, content))
	}

	return views, nil
}

// Delete 删除指定日记
func (s *JournalService) Delete(id uint) error {
	if err := s.db.Delete(&db.JournalEntry{}, id).Error; err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	return nil
}

func (s *JournalService) toView(entry db.JournalEntry, content string) *JournalEntryView {
	return &JournalEntryView{
		ID:        entry.ID,
		Content:   content,
		Mood:      entry.Mood,
		EntryDate: entry.EntryDate,
		WordCount: badge.WordCount(content),
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}
