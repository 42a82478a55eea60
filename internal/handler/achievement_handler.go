package handler

import (
	"net/http"

	"github.com/balanceseekr/internal/badge"
	"github.com/balanceseekr/internal/db"
	"github.com/gin-gonic/gin"
)

// ListAchievements 解析并返回徽章墙：目录中每枚徽章附带是否点亮与获得日期
func (a *API) ListAchievements(c *gin.Context) {
	earned := a.achievements.Resolve(nil, nil, nil, nil)

	earnedIndex := make(map[string]db.EarnedBadge, len(earned))
	for _, item := range earned {
		earnedIndex[item.BadgeID] = item
	}

	items := make([]gin.H, 0, len(badge.Catalog()))
	for _, def := range badge.Catalog() {
		item := gin.H{
			"id":          def.ID,
			"category":    def.Category,
			"is_streak":   def.IsStreak,
			"days":        def.DaysRequired,
			"name":        def.Name,
			"description": def.Description,
			"icon":        def.Icon,
			"unlocked":    false,
		}
		if record, ok := earnedIndex[def.ID]; ok {
			item["unlocked"] = true
			item["earned_at"] = record.EarnedAt.Format(dateFormat)
			item["award_code"] = record.AwardCode
		}
		items = append(items, item)
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"badges":   items,
		"unlocked": len(earned),
	})
}

// GetAchievementProgress 返回三个类别当前的连胜与当日达标情况
func (a *API) GetAchievementProgress(c *gin.Context) {
	progress := a.achievements.Progress(nil, nil, nil, nil)

	items := make([]gin.H, 0, len(progress))
	for _, item := range progress {
		items = append(items, gin.H{
			"category":      item.Category,
			"streak":        item.Streak,
			"today_qualify": item.TodayQualify,
		})
	}

	respondSuccess(c, http.StatusOK, gin.H{"progress": items})
}

func earnedToPayload(earned []db.EarnedBadge) []gin.H {
	items := make([]gin.H, 0, len(earned))
	for _, record := range earned {
		item := gin.H{
			"id":         record.BadgeID,
			"earned_at":  record.EarnedAt.Format(dateFormat),
			"award_code": record.AwardCode,
		}
		if def, ok := badge.Lookup(record.BadgeID); ok {
			item["name"] = def.Name
			item["icon"] = def.Icon
		}
		items = append(items, item)
	}
	return items
}
