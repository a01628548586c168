package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/juris-comb/app/export"
	"github.com/lysyi3m/juris-comb/app/insight"
	"github.com/lysyi3m/juris-comb/app/metrics"
	"github.com/lysyi3m/juris-comb/app/ruling"
	"github.com/lysyi3m/juris-comb/app/tasks"
)

const (
	defaultListLimit    = 100
	defaultSimilarLimit = 5
	maxSimilarLimit     = 50
	statsRunLimit       = 10
)

func NewHandler(rulings RulingReader, runs RunLister, subscriptions SubscriptionService,
	classifier RulingClassifier, ranker SimilarityRanker, exporter ExporterInterface,
	insights InsightGenerator, configs ConfigCounter, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		rulings:       rulings,
		runs:          runs,
		subscriptions: subscriptions,
		classifier:    classifier,
		ranker:        ranker,
		exporter:      exporter,
		insights:      insights,
		configs:       configs,
		scheduler:     scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"polling":   h.scheduler.IsPolling(),
	}

	if count, err := h.rulings.GetRulingCount(c.Request.Context()); err == nil {
		health["rulings"] = count
	}

	health["loaded_sources"] = h.configs.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	runs, err := h.runs.ListCycleRuns(c.Request.Context(), statsRunLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_cycle_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

func (h *Handler) ListRulings(c *gin.Context) {
	query, err := parseRulingQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit, err := parseLimit(c.Query("limit"), defaultListLimit, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	all, err := h.rulings.ListRulings(c.Request.Context(), 0)
	if err != nil {
		slog.Error("Database error", "operation", "list_rulings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := query.Apply(all)
	if len(result) > limit {
		result = result[:limit]
	}

	if c.Query("classify") == "true" {
		result = h.classifier.ClassifyAll(result)
	}

	c.JSON(http.StatusOK, gin.H{
		"rulings": result,
		"total":   len(result),
	})
}

func (h *Handler) GetRuling(c *gin.Context) {
	item, ok := h.lookupRuling(c, c.Param("key"))
	if !ok {
		return
	}

	if c.Query("classify") == "true" {
		classified := h.classifier.Classify(*item)
		item = &classified
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) SimilarToRuling(c *gin.Context) {
	key := c.Param("key")

	limit, err := parseLimit(c.Query("limit"), defaultSimilarLimit, maxSimilarLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	corpus, ok := h.loadCorpus(c)
	if !ok {
		return
	}

	var ref *ruling.Ruling
	for _, r := range corpus {
		if r.Key == key {
			ref = r
			break
		}
	}
	if ref == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ruling not found"})
		return
	}

	start := time.Now()
	matches := h.ranker.RankByReference(corpus, ref, limit)
	metrics.SimilarityLatency.WithLabelValues("reference").Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, gin.H{
		"reference": ref,
		"matches":   matches,
		"total":     len(matches),
	})
}

func (h *Handler) SimilarToText(c *gin.Context) {
	var req similarTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	limit = min(limit, maxSimilarLimit)

	corpus, ok := h.loadCorpus(c)
	if !ok {
		return
	}

	start := time.Now()
	matches := h.ranker.RankByText(corpus, req.Text, limit)
	metrics.SimilarityLatency.WithLabelValues("text").Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"total":   len(matches),
	})
}

func (h *Handler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := req.Rulings
	for _, key := range req.Keys {
		item, ok := h.lookupRuling(c, key)
		if !ok {
			return
		}
		items = append(items, *item)
	}

	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide rulings or keys to export"})
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Export(c.Request.Context(), &buf, format, items); err != nil {
		slog.Error("Export error", "format", format, "rulings", len(items), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed", "details": err.Error()})
		return
	}

	filename := fmt.Sprintf("acordaos_%s%s", time.Now().Format("20060102_150405"), format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("X-Export-Rulings", strconv.Itoa(len(items)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *Handler) GetInsight(c *gin.Context) {
	item, ok := h.lookupRuling(c, c.Param("key"))
	if !ok {
		return
	}

	name := insight.Template(c.Query("format"))
	text, err := h.insights.Generate(*item, name)
	if errors.Is(err, insight.ErrUnknownTemplate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Insight generation error", "key", item.Key, "format", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Insight generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":    item.Key,
		"format": name,
		"text":   text,
	})
}

func (h *Handler) TriggerPoll(c *gin.Context) {
	if h.scheduler.IsPolling() {
		c.JSON(http.StatusConflict, gin.H{"error": "A poll cycle is already running"})
		return
	}

	task := h.scheduler.NewPollTask(tasks.TriggerAPI)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing poll task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue poll task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Poll cycle enqueued",
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}

// lookupRuling writes the error response itself and reports false when the
// ruling cannot be served.
func (h *Handler) lookupRuling(c *gin.Context, key string) (*ruling.Ruling, bool) {
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ruling key"})
		return nil, false
	}

	item, err := h.rulings.GetRuling(c.Request.Context(), key)
	if err != nil {
		slog.Error("Database error", "operation", "get_ruling", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ruling not found", "key": key})
		return nil, false
	}
	return item, true
}

func (h *Handler) loadCorpus(c *gin.Context) ([]*ruling.Ruling, bool) {
	all, err := h.rulings.ListRulings(c.Request.Context(), 0)
	if err != nil {
		slog.Error("Database error", "operation", "list_rulings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}

	corpus := make([]*ruling.Ruling, len(all))
	for i := range all {
		corpus[i] = &all[i]
	}
	return corpus, true
}

func parseRulingQuery(c *gin.Context) (ruling.Query, error) {
	query := ruling.Query{
		Panel:           c.Query("panel"),
		Rapporteur:      c.Query("rapporteur"),
		Year:            c.Query("year"),
		ExcludeListings: c.Query("exclude_listings") == "true",
		Text:            c.Query("q"),
	}

	for _, term := range strings.Split(c.Query("exclude"), ",") {
		if term = strings.TrimSpace(term); term != "" {
			query.ExcludeTerms = append(query.ExcludeTerms, term)
		}
	}

	for param, target := range map[string]**time.Time{"from": &query.From, "to": &query.To} {
		value := c.Query(param)
		if value == "" {
			continue
		}
		t, err := time.Parse(ruling.SessionDateLayout, value)
		if err != nil {
			return ruling.Query{}, fmt.Errorf("invalid %s date %q, expected dd/mm/yyyy", param, value)
		}
		*target = &t
	}

	return query, nil
}

// parseLimit returns def for an empty value and caps at ceiling when ceiling > 0.
func parseLimit(value string, def, ceiling int) (int, error) {
	if value == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit %q", value)
	}
	if ceiling > 0 && limit > ceiling {
		limit = ceiling
	}
	return limit, nil
}
