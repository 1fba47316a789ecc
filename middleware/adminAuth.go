package middleware

import (
	"net/http"

	"mindbloom/utils"

	"github.com/gin-gonic/gin"
)

// RequireAdmin guards the counsellor dashboard.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).Admin {
			c.Next()
			return
		}
		if utils.WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Message: "Admin access required."})
			return
		}
		c.Redirect(http.StatusSeeOther, "/admin/login")
		c.Abort()
	}
}
