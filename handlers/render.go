package handlers

import (
	"errors"
	"net/http"
	"time"

	"mindbloom/middleware"
	"mindbloom/services/phms"
	"mindbloom/utils"

	"github.com/gin-gonic/gin"
)

// render executes a page template with the fields every layout needs.
func render(c *gin.Context, status int, name string, data gin.H) {
	session := middleware.CurrentSession(c)
	if data == nil {
		data = gin.H{}
	}
	data["LoggedIn"] = session.Authenticated()
	data["Admin"] = session.Admin
	data["UserName"] = session.Name
	data["UserEmail"] = session.Email
	data["Year"] = time.Now().Year()
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = session.PopFlash()
	}
	c.HTML(status, name, data)
}

// redirect answers a form post with 303 so the browser follows with GET.
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// expireSession drops the backend token after a 401 and sends the user back
// to the login page.
func expireSession(c *gin.Context) {
	session := middleware.CurrentSession(c)
	session.Logout()
	session.Flash = middleware.SessionExpiredMessage
	getLogger(c).Info("Backend token rejected, session cleared")

	if utils.WantsJSON(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":  middleware.SessionExpiredMessage,
			"redirect": "/login",
		})
		return
	}
	redirect(c, "/login")
}

// isUnauthorized reports whether err means the backend token is invalid.
func isUnauthorized(err error) bool {
	return errors.Is(err, phms.ErrUnauthorized)
}

// NotFound renders the 404 page.
func NotFound(c *gin.Context) {
	if utils.WantsJSON(c) {
		c.JSON(http.StatusNotFound, utils.ErrorResponse{Message: "Not found"})
		return
	}
	render(c, http.StatusNotFound, "404.html", gin.H{
		"Title": "Page not found",
		"Path":  c.Request.URL.Path,
	})
}
