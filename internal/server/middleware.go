package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/quartzsec/armora/internal/principal"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
	HeaderOrg      = "X-Org-ID"
)

// PrincipalContext resolves the caller identity forwarded by the gateway.
// Requests without identity headers proceed anonymously; the services reject
// operations that need a principal.
func (s *Server) PrincipalContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if rawID == "" {
			c.Next()
			return
		}

		userID, err := snowflake.ParseString(rawID)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		role := principal.RoleUser
		if rawRole := strings.TrimSpace(c.GetHeader(HeaderUserRole)); rawRole != "" {
			parsed, ok := principal.ParseRole(rawRole)
			if !ok {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			role = parsed
		}

		p := principal.Principal{ID: userID, Role: role}
		if rawOrg := strings.TrimSpace(c.GetHeader(HeaderOrg)); rawOrg != "" {
			orgID, err := snowflake.ParseString(rawOrg)
			if err != nil {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			p.OrgID = &orgID
		}

		ctx := principal.WithContext(c.Request.Context(), p)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
