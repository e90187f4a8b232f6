package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/signal-comb/app/database"
	"github.com/lysyi3m/signal-comb/app/extract"
	"github.com/lysyi3m/signal-comb/app/reservoir"
)

type Handler struct {
	builder       *reservoir.Builder
	healthRepo    database.HealthRepository
	watchlistRepo database.WatchlistRepository
	providerNames []string
	emojiDenylist []string
	reservoirSize int
	topN          int
	startedAt     time.Time
}

func NewHandler(builder *reservoir.Builder, healthRepo database.HealthRepository,
	watchlistRepo database.WatchlistRepository, providerNames []string,
	emojiDenylist []string, reservoirSize int, topN int) *Handler {
	return &Handler{
		builder:       builder,
		healthRepo:    healthRepo,
		watchlistRepo: watchlistRepo,
		providerNames: providerNames,
		emojiDenylist: emojiDenylist,
		reservoirSize: reservoirSize,
		topN:          topN,
		startedAt:     time.Now(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"providers": h.providerNames,
	}

	if terms, err := h.watchlistRepo.Terms(); err == nil {
		health["watchlist_size"] = len(terms)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetDiscoveryHealth(c *gin.Context) {
	records, err := h.healthRepo.All()
	if err != nil {
		slog.Error("Database error", "operation", "get_provider_health", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	healthy := 0
	for _, r := range records {
		if r.OK {
			healthy++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"providers": records,
		"healthy":   healthy,
		"total":     len(records),
	})
}

func (h *Handler) GetIngestSummary(c *gin.Context) {
	rows, err := h.builder.Build(c.Request.Context(), h.reservoirSize)
	if err != nil {
		slog.Error("Reservoir build failed", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	summary := gin.H{
		"reservoir_size":     len(rows),
		"emoji_candidates":   extract.EmojiCandidates(rows, h.emojiDenylist, h.topN),
		"acronym_candidates": extract.AcronymCandidates(rows, h.topN),
	}

	if terms, err := h.watchlistRepo.Terms(); err == nil {
		summary["watchlist"] = terms
	} else {
		slog.Error("Database error", "operation", "get_watchlist", "error", err)
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) RebuildReservoir(c *gin.Context) {
	nocache := c.Query("nocache") == "true"

	var rows []reservoir.Row
	var err error
	if nocache {
		rows, err = h.builder.Rebuild(c.Request.Context(), h.reservoirSize)
	} else {
		rows, err = h.builder.Build(c.Request.Context(), h.reservoirSize)
	}
	if err != nil {
		slog.Error("Reservoir rebuild failed", "nocache", nocache, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservoir_size": len(rows),
		"nocache":        nocache,
		"rebuilt_at":     time.Now().UTC().Format(time.RFC3339),
	})
}
