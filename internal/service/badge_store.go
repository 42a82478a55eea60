package service

import (
	"fmt"

	"github.com/balanceseekr/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BadgeStore 是已获得徽章的持久化契约。
// Upsert 必须幂等：相同 BadgeID 重复写入等价于一次写入，且不改动已有记录。
type BadgeStore interface {
	ListEarned() ([]db.EarnedBadge, error)
	Upsert(earned *db.EarnedBadge) error
}

// GormBadgeStore 基于 gorm 的 BadgeStore 实现
type GormBadgeStore struct {
	db *gorm.DB
}

// NewGormBadgeStore 构造 GormBadgeStore
func NewGormBadgeStore(gdb *gorm.DB) *GormBadgeStore {
	return &GormBadgeStore{db: gdb}
}

// ListEarned 返回全部已获得徽章，按获得顺序排列
func (s *GormBadgeStore) ListEarned() ([]db.EarnedBadge, error) {
	var earned []db.EarnedBadge
	if err := s.db.Order("created_at ASC").Find(&earned).Error; err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}
	return earned, nil
}

// Upsert 写入一枚徽章。badge_id 冲突时什么都不做，
// 既保证幂等，也保证已存记录（含原始获得日期）永不被覆盖。
func (s *GormBadgeStore) Upsert(earned *db.EarnedBadge) error {
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "badge_id"}},
		DoNothing: true,
	}).Create(earned).Error; err != nil {
		return fmt.Errorf("upsert earned badge: %w", err)
	}
	return nil
}
