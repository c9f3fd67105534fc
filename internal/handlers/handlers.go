package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"skillforge/api/internal/config"
	"skillforge/api/internal/mail"
	"skillforge/api/internal/middleware"
	"skillforge/api/internal/models"
	"skillforge/api/internal/security"
)

// LeadStore is what the handlers need from the lead repository; tests
// substitute a mock.
type LeadStore interface {
	Create(ctx context.Context, in models.LeadInput) (models.Lead, error)
	List(ctx context.Context) ([]models.Lead, error)
	UpdateByID(ctx context.Context, id string, patch map[string]string) (models.Lead, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	leads   LeadStore
	limiter *security.LoginLimiter
	mailer  *mail.Sender
	db      *pgxpool.Pool
	cache   *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	leads LeadStore,
	limiter *security.LoginLimiter,
	mailer *mail.Sender,
	db *pgxpool.Pool,
	cache *redis.Client,
) HandlerSet {
	return HandlerSet{
		log:     log,
		cfg:     cfg,
		leads:   leads,
		limiter: limiter,
		mailer:  mailer,
		db:      db,
		cache:   cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		v1.POST("/leads", h.SubmitLead)

		auth := v1.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/session", h.Session)

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminSession(h.cfg.Security))
		admin.GET("/leads", h.ListLeads)
		admin.PATCH("/leads/:id", h.UpdateLead)
		admin.DELETE("/leads/:id", h.DeleteLead)
		admin.GET("/status", h.DatabaseStatus)
	}
}

func (h HandlerSet) secureCookies() bool {
	return h.cfg.Environment == "production"
}

func requestContext(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}
