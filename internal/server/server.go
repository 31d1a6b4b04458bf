package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quartzsec/armora/internal/account"
	accountdomain "github.com/quartzsec/armora/internal/account/domain"
	"github.com/quartzsec/armora/internal/audit"
	auditdomain "github.com/quartzsec/armora/internal/audit/domain"
	"github.com/quartzsec/armora/internal/authorization"
	"github.com/quartzsec/armora/internal/catalog"
	catalogdomain "github.com/quartzsec/armora/internal/catalog/domain"
	"github.com/quartzsec/armora/internal/clock"
	"github.com/quartzsec/armora/internal/config"
	"github.com/quartzsec/armora/internal/notification"
	obslogger "github.com/quartzsec/armora/internal/observability/logger"
	obsmetrics "github.com/quartzsec/armora/internal/observability/metrics"
	"github.com/quartzsec/armora/internal/order"
	orderdomain "github.com/quartzsec/armora/internal/order/domain"
	"github.com/quartzsec/armora/internal/pricing"
	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	"github.com/quartzsec/armora/internal/pricingconfig"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	clock.Module,
	notification.Module,
	authorization.Module,
	audit.Module,
	pricingconfig.Module,
	pricing.Module,
	catalog.Module,
	order.Module,
	account.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node

	holder     *pricingconfig.Holder
	pricingSvc pricingdomain.Service
	catalogSvc catalogdomain.Service
	orderSvc   orderdomain.Service
	accountSvc accountdomain.Service
	authzSvc   authorization.Service
	auditSvc   auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node

	Holder     *pricingconfig.Holder
	PricingSvc pricingdomain.Service
	CatalogSvc catalogdomain.Service
	OrderSvc   orderdomain.Service
	AccountSvc accountdomain.Service
	AuthzSvc   authorization.Service
	AuditSvc   auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		log:        p.Log.Named("http.server"),
		genID:      p.GenID,
		holder:     p.Holder,
		pricingSvc: p.PricingSvc,
		catalogSvc: p.CatalogSvc,
		orderSvc:   p.OrderSvc,
		accountSvc: p.AccountSvc,
		authzSvc:   p.AuthzSvc,
		auditSvc:   p.AuditSvc,
	}

	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(s.PrincipalContext())

	api.POST("/quotes", s.Quote)

	api.POST("/products", s.CreateProduct)
	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProduct)

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/reprice", s.RepriceOrder)
	api.POST("/orders/:id/approve", s.ApproveOrder)
	api.POST("/orders/:id/reject", s.RejectOrder)
	api.POST("/orders/:id/payment-status", s.MarkOrderPaymentStatus)

	api.POST("/account-requests", s.SubmitAccountRequest)
	api.GET("/account-requests", s.ListAccountRequests)
	api.GET("/account-requests/:id", s.GetAccountRequest)
	api.POST("/account-requests/:id/approve", s.ApproveAccountRequest)
	api.POST("/account-requests/:id/reject", s.RejectAccountRequest)

	api.GET("/audit-logs", s.ListAuditLogs)
}
