package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/ai"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/common"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/config"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/memory"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/store/rabbitmq"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/store/redisstore"
)

type Handler struct {
	DB     *gorm.DB
	Cfg    config.Config
	Redis  *redisstore.Store
	Rabbit *rabbitmq.Publisher
	Svc    *memory.Service
}

// NewRegistry wires every supported generation provider; selection
// happens via cfg.AIProvider.
func NewRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()
	reg.Register("gemini", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.GeminiModel
		}
		return ai.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GoogleAPIKey, m), nil
	})
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m,
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})
	return reg
}

func NewHandler(gdb *gorm.DB, cfg config.Config, rds *redisstore.Store, rabbit *rabbitmq.Publisher) (*Handler, error) {
	provider, err := NewRegistry(cfg).Get(context.Background(), cfg.AIProvider, "")
	if err != nil {
		return nil, err
	}

	svc := memory.NewService(memory.NewRepo(gdb), provider, memory.Options{
		MaxChunkSize:        cfg.MaxChunkSize,
		MemoryContextLimit:  cfg.MemoryContextLimit,
		NotesContextLimit:   cfg.NotesContextLimit,
		ResolverSampleLimit: cfg.ResolverSampleLimit,
		RecommendTimeout:    time.Duration(cfg.RecommendTimeoutSeconds) * time.Second,
	})
	return &Handler{DB: gdb, Cfg: cfg, Redis: rds, Rabbit: rabbit, Svc: svc}, nil
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"status": "healthy"})
}

// failFromErr maps the service error taxonomy onto HTTP statuses.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, memory.ErrValidation):
		common.Fail(c, http.StatusBadRequest, 10010, err.Error())
	case errors.Is(err, memory.ErrDecode):
		common.Fail(c, http.StatusBadRequest, 10011, err.Error())
	case errors.Is(err, memory.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, memory.ErrUpstream):
		common.Fail(c, http.StatusBadGateway, 50201, err.Error())
	default:
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid id")
		return 0, false
	}
	return id, true
}
