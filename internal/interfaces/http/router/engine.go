package router

import (
	"github.com/gin-gonic/gin"
	"github.com/royale/pos/internal/infrastructure/logger"
	"github.com/royale/pos/internal/interfaces/http/dto"
	"github.com/royale/pos/internal/interfaces/http/handler"
	"github.com/royale/pos/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Handlers are the API endpoints mounted by NewEngine
type Handlers struct {
	System         *handler.SystemHandler
	Product        *handler.ProductHandler
	Sale           *handler.SaleHandler
	Report         *handler.ReportHandler
	Reconciliation *handler.ReconciliationHandler
	Advisor        *handler.AdvisorHandler
	Debtor         *handler.DebtorHandler
}

// EngineConfig configures the middleware chain
type EngineConfig struct {
	ServiceName string
	Logger      *zap.Logger
	CORS        middleware.CORSConfig
	MaxBodySize int64

	TracingEnabled bool
	TracerProvider trace.TracerProvider
	// Meter enables OTEL request metrics when set
	Meter metric.Meter
	// Prometheus enables the metrics endpoint at MetricsPath when set
	Prometheus  *middleware.PrometheusMetrics
	MetricsPath string

	ProfilingEnabled bool
}

// NewEngine builds the gin engine with the full middleware chain and every
// route
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	middleware.SetupValidator()
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(cfg.Logger),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.TracingEnabled,
			TracerProvider: cfg.TracerProvider,
		}),
		middleware.SpanEnricher(),
		logger.GinMiddleware(cfg.Logger),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
		middleware.HTTPMetrics(cfg.Meter),
		middleware.Profiling(cfg.ProfilingEnabled, "/health", metricsPath),
	)
	if cfg.Prometheus != nil {
		engine.Use(cfg.Prometheus.Middleware())
		engine.GET(metricsPath, cfg.Prometheus.Handler())
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeRouteNotFound),
			dto.NewErrorResponseWithRequestID(dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine)
	for _, g := range apiGroups(h) {
		r.Register(g)
	}
	r.Setup()
	return engine
}

func apiGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup
	if h.Product != nil {
		groups = append(groups, NewDomainGroup("/products").
			GET("", h.Product.List).
			POST("", h.Product.Create).
			GET("/low-stock", h.Product.LowStock).
			GET("/:id", h.Product.Get).
			PUT("/:id", h.Product.Update).
			DELETE("/:id", h.Product.Delete).
			POST("/:id/adjust", h.Product.Adjust))
	}
	if h.Sale != nil {
		groups = append(groups, NewDomainGroup("/sales").
			GET("", h.Sale.List).
			POST("", h.Sale.Record).
			GET("/:id", h.Sale.Get))
	}
	if h.Report != nil {
		groups = append(groups, NewDomainGroup("/reports").
			GET("/sales.csv", h.Report.SalesCSV).
			GET("/daily", h.Report.Daily).
			GET("/dashboard", h.Report.Dashboard).
			POST("/archive", h.Report.Archive))
	}
	if h.Reconciliation != nil {
		groups = append(groups, NewDomainGroup("/inventory").
			GET("/reconciliation", h.Reconciliation.Check).
			POST("/reconciliation", h.Reconciliation.Repair).
			GET("/reconciliation/:id", h.Reconciliation.Recount))
	}
	if h.Advisor != nil {
		groups = append(groups, NewDomainGroup("/advisor").
			GET("/advice", h.Advisor.Advice).
			POST("/chat", h.Advisor.Chat))
	}
	if h.Debtor != nil {
		groups = append(groups, NewDomainGroup("/debtors").
			GET("", h.Debtor.List).
			POST("", h.Debtor.Create).
			GET("/:id", h.Debtor.Get).
			DELETE("/:id", h.Debtor.Delete).
			POST("/:id/charge", h.Debtor.Charge).
			POST("/:id/payment", h.Debtor.Payment))
	}
	return groups
}
