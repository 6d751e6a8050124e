package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

// Pinger is the database health probe.
type Pinger interface {
	Ping(ctx context.Context) error
	DatabaseName() string
}

type SystemHandler struct {
	DB  Pinger
	Log *zap.Logger
}

func NewSystemHandler(db Pinger, log *zap.Logger) *SystemHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SystemHandler{DB: db, Log: log}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SystemHandler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		respondError(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	if err := h.DB.Ping(c.Request.Context()); err != nil {
		h.Log.Warn("database ping failed", zap.Error(err))
		respondError(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": h.DB.DatabaseName()})
}

func (h *SystemHandler) Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		respondError(c, http.StatusServiceUnavailable, "router not ready")
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method": rt.Method,
			"path":   rt.Path,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
