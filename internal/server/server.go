package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	settingsdomain "github.com/smallbiznis/faktura/internal/billingsettings/domain"
	"github.com/smallbiznis/faktura/internal/config"
	contactdomain "github.com/smallbiznis/faktura/internal/contact/domain"
	"github.com/smallbiznis/faktura/internal/export"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/observability/logger"
	"github.com/smallbiznis/faktura/internal/observability/metrics"
	"github.com/smallbiznis/faktura/internal/tax"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HeaderOrg is rejected on API-key routes: organization identity comes from
// the key alone, never from the caller.
const HeaderOrg = "X-Org-Id"

type Server struct {
	cfg config.Config
	db  *gorm.DB
	log *zap.Logger

	invoiceSvc  invoicedomain.Service
	contactSvc  contactdomain.Service
	settingsSvc settingsdomain.Service
	taxResolver tax.Resolver
	exportSvc   *export.Service

	limiter *rateLimiter
}

type ServerParam struct {
	fx.In

	Config      config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	InvoiceSvc  invoicedomain.Service
	ContactSvc  contactdomain.Service
	SettingsSvc settingsdomain.Service
	TaxResolver tax.Resolver
	ExportSvc   *export.Service
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:         p.Config,
		db:          p.DB,
		log:         p.Log.Named("server"),
		invoiceSvc:  p.InvoiceSvc,
		contactSvc:  p.ContactSvc,
		settingsSvc: p.SettingsSvc,
		taxResolver: p.TaxResolver,
		exportSvc:   p.ExportSvc,
		limiter:     newRateLimiter(p.Config.HTTP.RateLimit, p.Config.HTTP.RateWindow),
	}
}

func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.Use(s.RateLimit())
	api.Use(s.APIKeyRequired())
	{
		api.POST("/invoices", s.CreateInvoice)
		api.GET("/invoices", s.ListInvoices)
		api.GET("/invoices/export", s.ExportInvoices)
		api.GET("/invoices/:id", s.GetInvoiceByID)
		api.POST("/invoices/:id/send", s.SendInvoice)
		api.POST("/invoices/:id/payments", s.RecordPayment)
		api.POST("/invoices/:id/cancel", s.CancelInvoice)
		api.GET("/invoices/:id/pdf", s.DownloadInvoicePDF)

		api.POST("/contacts", s.CreateContact)
		api.GET("/contacts", s.ListContacts)
		api.GET("/contacts/:id", s.GetContactByID)
		api.PATCH("/contacts/:id", s.UpdateContact)
		api.DELETE("/contacts/:id", s.DeleteContact)

		api.GET("/settings", s.GetSettings)
		api.PATCH("/settings", s.UpdateSettings)

		api.GET("/tax-rates", s.GetTaxRates)
	}

	if !s.cfg.IsProduction() {
		engine.POST("/internal/test-cleanup", s.TestCleanup)
	}
}

// @Summary      Health Check
// @Description  Liveness probe
// @Tags         system
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RateLimit applies a per-key fixed window limit before authentication so
// brute-forcing keys is throttled too.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			key = c.ClientIP()
		}
		allowed, retryAfter := s.limiter.Allow(key)
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter/time.Second)+1))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine, server *Server) {
	server.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
