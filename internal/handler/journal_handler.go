package handler

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/balanceseekr/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type journalPayload struct {
	Content   string `json:"content"`
	Mood      string `json:"mood"`
	EntryDate string `json:"entry_date"`
}

// ListJournalEntries 返回日记列表 JSON（已解密）
func (a *API) ListJournalEntries(c *gin.Context) {
	start, err := parseDateField(c.Query("start"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的起始日期")
		return
	}
	end, err := parseDateField(c.Query("end"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的结束日期")
		return
	}

	entries, err := a.journal.List(service.JournalFilter{
		Start: start,
		End:   end,
		Mood:  c.Query("mood"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取日记列表失败")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, journalToPayload(entry))
	}

	respondSuccess(c, http.StatusOK, gin.H{"entries": items})
}

// GetJournalEntry 返回单篇日记
func (a *API) GetJournalEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日记ID")
		return
	}

	entry, err := a.journal.Get(id)
	if err != nil {
		handleJournalError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"entry": journalToPayload(*entry)})
}

// PreviewJournalEntry 将日记正文渲染为净化后的 HTML
func (a *API) PreviewJournalEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日记ID")
		return
	}

	entry, err := a.journal.Get(id)
	if err != nil {
		handleJournalError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(entry.Content), &buf); err != nil {
		respondError(c, http.StatusInternalServerError, "渲染日记失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"id":   entry.ID,
		"html": sanitizer.Sanitize(buf.String()),
	})
}

// CreateJournalEntry 创建日记
func (a *API) CreateJournalEntry(c *gin.Context) {
	var payload journalPayload
	if !bindJSON(c, &payload, "无效的日记数据") {
		return
	}

	input, ok := journalPayloadToInput(c, payload)
	if !ok {
		return
	}

	entry, err := a.journal.Create(input)
	if err != nil {
		handleJournalError(c, err)
		return
	}

	// 新日记可能点亮徽章，顺带解析一次
	earned := a.achievements.Resolve(nil, nil, nil, nil)

	respondSuccess(c, http.StatusCreated, gin.H{
		"entry":  journalToPayload(*entry),
		"badges": earnedToPayload(earned),
	})
}

// UpdateJournalEntry 更新日记
func (a *API) UpdateJournalEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日记ID")
		return
	}

	var payload journalPayload
	if !bindJSON(c, &payload, "无效的日记数据") {
		return
	}

	input, ok := journalPayloadToInput(c, payload)
	if !ok {
		return
	}

	entry, err := a.journal.Update(id, input)
	if err != nil {
		handleJournalError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"entry": journalToPayload(*entry)})
}

// DeleteJournalEntry 删除日记
func (a *API) DeleteJournalEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日记ID")
		return
	}

	if err := a.journal.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除日记失败")
		return
	}

	respondSuccess(c, http.StatusOK, nil)
}

func journalPayloadToInput(c *gin.Context, payload journalPayload) (service.JournalInput, bool) {
	entryDate, err := parseDateField(payload.EntryDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日记日期")
		return service.JournalInput{}, false
	}

	return service.JournalInput{
		Content:   payload.Content,
		Mood:      payload.Mood,
		EntryDate: entryDate,
	}, true
}

func journalToPayload(entry service.JournalEntryView) gin.H {
	return gin.H{
		"id":         entry.ID,
		"content":    entry.Content,
		"mood":       entry.Mood,
		"entry_date": entry.EntryDate.Format(dateFormat),
		"word_count": entry.WordCount,
		"created_at": entry.CreatedAt.Format(time.RFC3339),
	}
}

func handleJournalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJournalEntryNotFound):
		respondError(c, http.StatusNotFound, "日记不存在")
	case errors.Is(err, service.ErrJournalContentRequired):
		respondError(c, http.StatusBadRequest, "日记内容不能为空")
	default:
		respondError(c, http.StatusInternalServerError, "日记操作失败")
	}
}
