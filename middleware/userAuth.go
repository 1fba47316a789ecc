package middleware

import (
	"net/http"

	"mindbloom/utils"

	"github.com/gin-gonic/gin"
)

// RequireUser lets only sessions holding a backend token through. Pages are
// redirected to the login form, JSON callers get 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).Authenticated() {
			c.Next()
			return
		}
		if utils.WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Please log in to continue."})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}
