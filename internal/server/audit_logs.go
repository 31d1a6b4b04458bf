package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/quartzsec/armora/internal/audit/domain"
	"github.com/quartzsec/armora/internal/authorization"
	"github.com/quartzsec/armora/internal/principal"
	"github.com/quartzsec/armora/pkg/db/pagination"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	caller, ok := principal.FromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.authzSvc.Authorize(c.Request.Context(), caller, authorization.ObjectAuditLog, authorization.ActionAuditLogView); err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		pagination.Pagination
		Action     string `form:"action"`
		TargetType string `form:"target_type"`
		TargetID   string `form:"target_id"`
		StartAt    string `form:"start_at"`
		EndAt      string `form:"end_at"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	req := auditdomain.ListAuditLogRequest{
		Pagination: query.Pagination,
		Action:     strings.TrimSpace(query.Action),
		TargetType: strings.TrimSpace(query.TargetType),
		TargetID:   strings.TrimSpace(query.TargetID),
	}

	if raw := strings.TrimSpace(query.StartAt); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, auditdomain.ErrInvalidTimeRange)
			return
		}
		req.StartAt = &ts
	}
	if raw := strings.TrimSpace(query.EndAt); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, auditdomain.ErrInvalidTimeRange)
			return
		}
		req.EndAt = &ts
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.AuditLogs,
		"page_info": resp.PageInfo,
	})
}
