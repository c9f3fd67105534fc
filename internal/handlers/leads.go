package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"skillforge/api/internal/middleware"
	"skillforge/api/internal/models"
	"skillforge/api/internal/repository"
)

// SubmitLead is the one public write: the enrollment form posts here.
func (h HandlerSet) SubmitLead(c *gin.Context) {
	var in models.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in.ClientIP = c.ClientIP()
	in.UserAgent = c.GetHeader("User-Agent")

	in = in.Sanitize()
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c, 10*time.Second)
	defer cancel()

	lead, err := h.leads.Create(ctx, in)
	if err != nil {
		h.log.Error().Err(err).Msg("lead create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	middleware.RecordLeadReceived(lead.LeadSource)

	if h.mailer.Enabled() {
		go func(lead models.Lead) {
			if err := h.mailer.SendLeadNotification(lead); err != nil {
				h.log.Warn().Err(err).Str("lead_id", lead.ID).Msg("lead notification failed")
			}
		}(lead)
	}

	c.JSON(http.StatusCreated, lead)
}

func (h HandlerSet) ListLeads(c *gin.Context) {
	ctx, cancel := requestContext(c, 15*time.Second)
	defer cancel()

	leads, err := h.leads.List(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("lead listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"total": len(leads),
	})
}

// UpdateLead applies a partial patch. Unknown keys are dropped silently;
// the whitelist lives in models.FilterPatch.
func (h HandlerSet) UpdateLead(c *gin.Context) {
	id := c.Param("id")

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := requestContext(c, 10*time.Second)
	defer cancel()

	lead, err := h.leads.UpdateByID(ctx, id, models.FilterPatch(body))
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		h.log.Error().Err(err).Str("lead_id", id).Msg("lead update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lead)
}

func (h HandlerSet) DeleteLead(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := requestContext(c, 10*time.Second)
	defer cancel()

	deleted, err := h.leads.DeleteByID(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Str("lead_id", id).Msg("lead delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
