package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/royale/pos/internal/application/advisor"
	catalogapp "github.com/royale/pos/internal/application/catalog"
	inventoryapp "github.com/royale/pos/internal/application/inventory"
	partnerapp "github.com/royale/pos/internal/application/partner"
	reportapp "github.com/royale/pos/internal/application/report"
	tradeapp "github.com/royale/pos/internal/application/trade"
	"github.com/royale/pos/internal/infrastructure/config"
	"github.com/royale/pos/internal/infrastructure/event"
	"github.com/royale/pos/internal/infrastructure/persistence"
	"github.com/royale/pos/internal/interfaces/http/dto"
	"github.com/royale/pos/internal/interfaces/http/handler"
	"github.com/royale/pos/internal/interfaces/http/middleware"
	"github.com/royale/pos/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, p advisor.Prompt) (string, error) {
	if p.Purpose == advisor.PurposeChat {
		return "echo: " + p.Messages[len(p.Messages)-1].Text, nil
	}
	return "1. Restock sugar", nil
}

type testAPI struct {
	engine *gin.Engine
	db     *persistence.Database
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zap.NewNop()
	db := persistence.NewDatabase(&config.DatabaseConfig{Path: ":memory:", BusyTimeout: time.Second}, log)
	require.NoError(t, db.Initialize(context.Background()))
	t.Cleanup(func() { _ = db.Close() })

	products := persistence.NewGormProductRepository(db)
	sales := persistence.NewGormSaleRepository(db)
	ledger := persistence.NewGormStockLedger(db)
	debtors := persistence.NewGormDebtorRepository(db)
	bus := event.NewInMemoryEventBus(log)

	inventory := catalogapp.NewInventoryService(products, ledger, bus, log, catalogapp.DefaultDefaults())
	processor := tradeapp.NewSaleProcessor(products, sales, ledger, bus, log)
	reports := reportapp.NewService(sales, products, nil, time.UTC, log)
	reconciler := inventoryapp.NewReconciliationService(sales, products, ledger, ledger, log)
	adv := advisor.NewService(echoGenerator{}, products, sales, log)

	engine := router.NewEngine(router.EngineConfig{
		ServiceName: "royale-test",
		Logger:      log,
		CORS:        middleware.DefaultCORSConfig(),
		MaxBodySize: 1 << 20,
		Prometheus:  middleware.NewPrometheusMetrics("royale"),
	}, router.Handlers{
		System:         handler.NewSystemHandler(db, "test"),
		Product:        handler.NewProductHandler(inventory),
		Sale:           handler.NewSaleHandler(processor),
		Report:         handler.NewReportHandler(reports),
		Reconciliation: handler.NewReconciliationHandler(reconciler),
		Advisor:        handler.NewAdvisorHandler(adv),
		Debtor:         handler.NewDebtorHandler(partnerapp.NewDebtorService(debtors, log)),
	})
	return &testAPI{engine: engine, db: db}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (a *testAPI) createProduct(t *testing.T, name, price, qty, threshold string) catalogapp.ProductResponse {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/v1/products", catalogapp.ProductForm{
		Name: name, SellingPrice: price, Quantity: qty, LowStockThreshold: threshold,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[catalogapp.ProductResponse](t, env.Data)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	require.NoError(t, api.db.Close())
	w, env = api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeStorageUnavailable, env.Error.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set(middleware.RequestIDHeader, "till-7")
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, "till-7", w.Header().Get(middleware.RequestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	w, env := api.do(t, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeRouteNotFound, env.Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodGet, "/api/v1/products", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `royale_http_requests_total{method="GET",route="/api/v1/products",status="200"} 1`)
}

func TestBodyLimit(t *testing.T) {
	api := newTestAPI(t)
	big := strings.Repeat("x", 2<<20)
	w, env := api.do(t, http.MethodPost, "/api/v1/advisor/chat", map[string]string{"message": big})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, env.Error.Code)
}
