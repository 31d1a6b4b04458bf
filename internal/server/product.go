package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quartzsec/armora/internal/authorization"
	catalogdomain "github.com/quartzsec/armora/internal/catalog/domain"
	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
	"github.com/quartzsec/armora/internal/principal"
	"github.com/shopspring/decimal"
)

type createPlanRequest struct {
	Name                     string          `json:"name"`
	Shape                    string          `json:"shape"`
	BillingInterval          string          `json:"billing_interval"`
	BasePrice                decimal.Decimal `json:"base_price"`
	SetupFee                 decimal.Decimal `json:"setup_fee"`
	AdditionalSetupFee       decimal.Decimal `json:"additional_setup_fee"`
	AdditionalRecurringPrice decimal.Decimal `json:"additional_recurring_price"`
}

type createProductRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Metadata    map[string]any      `json:"metadata"`
	Plans       []createPlanRequest `json:"plans"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	caller, ok := principal.FromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.authzSvc.Authorize(c.Request.Context(), caller, authorization.ObjectProduct, authorization.ActionProductCreate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	plans := make([]catalogdomain.CreatePlanRequest, 0, len(req.Plans))
	for _, plan := range req.Plans {
		plans = append(plans, catalogdomain.CreatePlanRequest{
			Name:                     strings.TrimSpace(plan.Name),
			Shape:                    pricingdomain.Shape(strings.ToUpper(strings.TrimSpace(plan.Shape))),
			BillingInterval:          pricingdomain.BillingInterval(strings.ToUpper(strings.TrimSpace(plan.BillingInterval))),
			BasePrice:                plan.BasePrice,
			SetupFee:                 plan.SetupFee,
			AdditionalSetupFee:       plan.AdditionalSetupFee,
			AdditionalRecurringPrice: plan.AdditionalRecurringPrice,
		})
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateProductRequest{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Metadata:    req.Metadata,
		Plans:       plans,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	resp, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProduct(c *gin.Context) {
	resp, err := s.catalogSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
