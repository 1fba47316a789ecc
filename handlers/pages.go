package handlers

import (
	"net/http"

	"mindbloom/middleware"
	"mindbloom/models"
	"mindbloom/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PageHandler serves the static marketing pages and the signed-in home page.
type PageHandler struct {
	notices notification.NotificationService
}

func NewPageHandler(notices notification.NotificationService) *PageHandler {
	return &PageHandler{notices: notices}
}

func (h *PageHandler) Index(c *gin.Context) {
	render(c, http.StatusOK, "index.html", gin.H{"Title": "MindBloom"})
}

func (h *PageHandler) About(c *gin.Context) {
	render(c, http.StatusOK, "about.html", gin.H{"Title": "About us"})
}

// Home greets the signed-in user and lists their reminder notices.
func (h *PageHandler) Home(c *gin.Context) {
	session := middleware.CurrentSession(c)

	var notices []models.Notice
	if h.notices != nil {
		var err error
		notices, err = h.notices.List(c.Request.Context(), userKey(session), 5)
		if err != nil {
			getLogger(c).Warn("Failed to load notices", zap.Error(err))
		}
	}
	render(c, http.StatusOK, "home.html", gin.H{
		"Title":   "Welcome",
		"Notices": notices,
	})
}
