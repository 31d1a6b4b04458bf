package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/quartzsec/armora/internal/account/domain"
	accountrepository "github.com/quartzsec/armora/internal/account/repository"
	accountservice "github.com/quartzsec/armora/internal/account/service"
	auditdomain "github.com/quartzsec/armora/internal/audit/domain"
	auditrepository "github.com/quartzsec/armora/internal/audit/repository"
	auditservice "github.com/quartzsec/armora/internal/audit/service"
	"github.com/quartzsec/armora/internal/authorization"
	catalogdomain "github.com/quartzsec/armora/internal/catalog/domain"
	catalogrepository "github.com/quartzsec/armora/internal/catalog/repository"
	catalogservice "github.com/quartzsec/armora/internal/catalog/service"
	"github.com/quartzsec/armora/internal/clock"
	"github.com/quartzsec/armora/internal/config"
	"github.com/quartzsec/armora/internal/notification"
	orderdomain "github.com/quartzsec/armora/internal/order/domain"
	orderrepository "github.com/quartzsec/armora/internal/order/repository"
	orderservice "github.com/quartzsec/armora/internal/order/service"
	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	pricingservice "github.com/quartzsec/armora/internal/pricing/service"
	"github.com/quartzsec/armora/internal/pricingconfig"
	"github.com/quartzsec/armora/internal/principal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serverTestEnv struct {
	srv     *Server
	node    *snowflake.Node
	planID  string
	adminID string
	userID  string
}

func newServerTestEnv(t *testing.T) *serverTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Product{},
		&catalogdomain.Plan{},
		&orderdomain.PurchaseOrder{},
		&orderdomain.OrderLineItem{},
		&accountdomain.AccountRequest{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	logger := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	holder, err := pricingconfig.NewStaticHolder(pricingconfig.DefaultPricingConfig())
	require.NoError(t, err)

	pricingSvc := pricingservice.NewService(pricingservice.ServiceParam{Log: logger, Holder: holder})

	catalogSvc := catalogservice.NewService(catalogservice.ServiceParam{
		DB: db, Log: logger, GenID: node, Repo: catalogrepository.Provide(db),
	})

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: logger, GenID: node, Repo: auditrepository.Provide(),
	})

	authzSvc, err := authorization.NewStatic(logger)
	require.NoError(t, err)

	hook := notification.NoOpHook{}

	orderSvc := orderservice.NewService(orderservice.ServiceParam{
		DB: db, Log: logger, GenID: node, Clock: clk,
		Repo:       orderrepository.Provide(),
		CatalogSvc: catalogSvc,
		PricingSvc: pricingSvc,
		AuthzSvc:   authzSvc,
		AuditSvc:   auditSvc,
		Hook:       hook,
	})

	accountSvc := accountservice.NewService(accountservice.ServiceParam{
		DB: db, Log: logger, GenID: node, Clock: clk,
		Repo:     accountrepository.Provide(),
		AuthzSvc: authzSvc,
		AuditSvc: auditSvc,
		Hook:     hook,
	})

	srv := NewServer(ServerParams{
		Gin:        NewEngine(logger),
		Cfg:        config.Config{HTTPAddr: ":0"},
		DB:         db,
		Log:        logger,
		GenID:      node,
		Holder:     holder,
		PricingSvc: pricingSvc,
		CatalogSvc: catalogSvc,
		OrderSvc:   orderSvc,
		AccountSvc: accountSvc,
		AuthzSvc:   authzSvc,
		AuditSvc:   auditSvc,
	})

	orgID := node.Generate()
	product := catalogdomain.Product{ID: node.Generate(), OrgID: orgID, Code: "device-security-suite", Name: "Device Security Suite"}
	require.NoError(t, db.Create(&product).Error)

	plan := catalogdomain.Plan{
		ID:                       node.Generate(),
		OrgID:                    orgID,
		ProductID:                product.ID,
		Code:                     "per-device-annual",
		Name:                     "Per Device Annual",
		Shape:                    pricingdomain.ShapePerDevice,
		BillingInterval:          pricingdomain.Year,
		BasePrice:                decimal.NewFromInt(100),
		SetupFee:                 decimal.NewFromInt(50),
		AdditionalSetupFee:       decimal.NewFromInt(20),
		AdditionalRecurringPrice: decimal.NewFromInt(100),
		Active:                   true,
	}
	require.NoError(t, db.Create(&plan).Error)

	return &serverTestEnv{
		srv:     srv,
		node:    node,
		planID:  plan.ID.String(),
		adminID: node.Generate().String(),
		userID:  node.Generate().String(),
	}
}

func (e *serverTestEnv) do(t *testing.T, method, path string, body any, userID string, role principal.Role) *httptest.ResponseRecorder {
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
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
		req.Header.Set(HeaderUserRole, string(role))
	}

	w := httptest.NewRecorder()
	e.srv.Engine().ServeHTTP(w, req)
	return w
}

func TestQuoteEndpoint(t *testing.T) {
	env := newServerTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/quotes", gin.H{
		"plan_id":  env.planID,
		"quantity": 3,
		"tier":     "standard",
	}, "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data pricingdomain.PriceQuote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.TotalFirstPayment.Equal(decimal.NewFromInt(390)))
	assert.Equal(t, "annual", resp.Data.BillingCycleLabel)
}

func TestQuoteEndpointRejectsUnknownTier(t *testing.T) {
	env := newServerTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/quotes", gin.H{
		"plan_id":  env.planID,
		"quantity": 3,
		"tier":     "platinum",
	}, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	env := newServerTestEnv(t)

	// Anonymous creation is rejected.
	w := env.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"plan_id":  env.planID,
		"quantity": 3,
		"tier":     "pro",
	}, "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"plan_id":  env.planID,
		"quantity": 3,
		"tier":     "pro",
	}, env.userID, principal.RoleUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data orderdomain.OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	orderID := created.Data.Order.ID.String()
	assert.True(t, created.Data.Order.Amount.Equal(decimal.NewFromInt(468)))

	// Plain users cannot approve.
	w = env.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/approve", nil, env.userID, principal.RoleUser)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/approve", nil, env.adminID, principal.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Second decision conflicts.
	w = env.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/reject", gin.H{"reason": "too late"}, env.adminID, principal.RoleAdmin)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, nil, env.userID, principal.RoleUser)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var fetched struct {
		Data orderdomain.OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "APPROVED", string(fetched.Data.Order.Status))
}

func TestRejectWithoutReasonIsBadRequest(t *testing.T) {
	env := newServerTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"plan_id":  env.planID,
		"quantity": 1,
		"tier":     "standard",
	}, env.userID, principal.RoleUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data orderdomain.OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	orderID := created.Data.Order.ID.String()

	w = env.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/reject", gin.H{"reason": ""}, env.adminID, principal.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestUnknownOrderIsNotFound(t *testing.T) {
	env := newServerTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/orders/"+env.node.Generate().String(), nil, env.userID, principal.RoleUser)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestAccountRequestOverHTTP(t *testing.T) {
	env := newServerTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/account-requests", gin.H{
		"email":          "ops@example.com",
		"requested_role": "manager",
	}, env.userID, principal.RoleUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data accountdomain.AccountRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	requestID := created.Data.ID.String()

	// Duplicate submission conflicts.
	w = env.do(t, http.MethodPost, "/api/v1/account-requests", gin.H{
		"email": "ops@example.com",
	}, env.userID, principal.RoleUser)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/account-requests/"+requestID+"/approve", gin.H{"role": "user"}, env.adminID, principal.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/account-requests/"+requestID, nil, env.adminID, principal.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var fetched struct {
		Data accountdomain.AccountRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "APPROVED", string(fetched.Data.Status))
	require.NotNil(t, fetched.Data.AssignedRole)
	assert.Equal(t, principal.RoleUser, *fetched.Data.AssignedRole)
}

func TestAuditLogsRequireAdminView(t *testing.T) {
	env := newServerTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/audit-logs", nil, env.userID, principal.RoleUser)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/audit-logs", nil, env.adminID, principal.RoleAdmin)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealthz(t *testing.T) {
	env := newServerTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
