package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"skillforge/api/internal/database"
)

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := requestContext(c, 2*time.Second)
	defer cancel()

	dbStatus := "not_configured"
	if h.db != nil {
		dbStatus = "ok"
		if err := h.db.Ping(ctx); err != nil {
			dbStatus = "error"
			h.log.Error().Err(err).Msg("database ping failed")
		}
	}

	cacheStatus := "not_configured"
	if h.cache != nil {
		cacheStatus = "ok"
		if err := h.cache.Ping(ctx).Err(); err != nil {
			cacheStatus = "error"
			h.log.Error().Err(err).Msg("redis ping failed")
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Database:    dbStatus,
		Cache:       cacheStatus,
		Environment: h.cfg.Environment,
	})
}

type databaseStatusResponse struct {
	Configured bool   `json:"configured"`
	Host       string `json:"host"`
	TotalLeads int64  `json:"totalLeads"`
}

// DatabaseStatus reports connection-string configuration and the current
// row count. When no DSN is configured it answers without touching the
// network: configured=false, zero leads.
func (h HandlerSet) DatabaseStatus(c *gin.Context) {
	resp := databaseStatusResponse{
		Configured: h.cfg.Postgres.DSN != "",
		Host:       database.HostFromDSN(h.cfg.Postgres.DSN),
	}

	if resp.Configured {
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		total, err := h.leads.Count(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("lead count failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp.TotalLeads = total
	}

	c.JSON(http.StatusOK, resp)
}
