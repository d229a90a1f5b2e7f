package middleware

import (
	"errors"
	"net/http"

	"gift-tracker/pkg/identity"
	"gift-tracker/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PrincipalKey is the gin context key under which the resolved principal is
// stored. Exported so handler tests can inject a principal directly.
const PrincipalKey = "principal"

// RequirePrincipal resolves the X-User-Name header to a Principal with the
// user's stored role and puts it in the request context. Unknown users are
// rejected.
func RequirePrincipal(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader("X-User-Name")
		if username == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-User-Name header is required"})
			return
		}

		var user models.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		role, err := identity.ParseRole(user.Role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user has no valid role assigned"})
			return
		}

		c.Set(PrincipalKey, identity.Principal{
			UserID:   user.Username,
			Username: user.Username,
			Role:     role,
		})
		c.Next()
	}
}

// CurrentPrincipal returns the principal placed by RequirePrincipal.
func CurrentPrincipal(c *gin.Context) (identity.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return identity.Principal{}, false
	}
	p, ok := v.(identity.Principal)
	return p, ok
}
