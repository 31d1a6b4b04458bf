package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/quartzsec/armora/internal/order/domain"
	"github.com/quartzsec/armora/pkg/db/pagination"
)

type createOrderRequest struct {
	PlanID   string `json:"plan_id"`
	Quantity int32  `json:"quantity"`
	Tier     string `json:"tier"`
	Notes    string `json:"notes"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		PlanID:   strings.TrimSpace(req.PlanID),
		Quantity: req.Quantity,
		Tier:     strings.TrimSpace(req.Tier),
		Notes:    req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	resp, err := s.orderSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status      string `form:"status"`
		RequesterID string `form:"requester_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListOrderRequest{
		Pagination:  query.Pagination,
		Status:      query.Status,
		RequesterID: query.RequesterID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Orders,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) ApproveOrder(c *gin.Context) {
	if err := s.orderSvc.Approve(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RejectOrder(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.orderSvc.Reject(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func (s *Server) MarkOrderPaymentStatus(c *gin.Context) {
	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.orderSvc.MarkPaymentStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) RepriceOrder(c *gin.Context) {
	quote, err := s.orderSvc.Reprice(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": quote})
}
