package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/quartzsec/armora/internal/account/domain"
	"github.com/quartzsec/armora/pkg/db/pagination"
)

type submitAccountRequest struct {
	Email         string `json:"email"`
	RequestedRole string `json:"requested_role"`
}

func (s *Server) SubmitAccountRequest(c *gin.Context) {
	var req submitAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.accountSvc.Submit(c.Request.Context(), accountdomain.SubmitRequest{
		Email:         strings.TrimSpace(req.Email),
		RequestedRole: strings.TrimSpace(req.RequestedRole),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetAccountRequest(c *gin.Context) {
	resp, err := s.accountSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAccountRequests(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.accountSvc.List(c.Request.Context(), accountdomain.ListRequest{
		Pagination: query.Pagination,
		Status:     query.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Requests,
		"page_info": resp.PageInfo,
	})
}

type approveAccountRequest struct {
	Role string `json:"role"`
}

func (s *Server) ApproveAccountRequest(c *gin.Context) {
	var req approveAccountRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	err := s.accountSvc.Approve(c.Request.Context(), c.Param("id"), accountdomain.ApproveRequest{
		Role: strings.TrimSpace(req.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

func (s *Server) RejectAccountRequest(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.accountSvc.Reject(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}
