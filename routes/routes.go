package routes

import (
	"net/http"
	"time"

	"mindbloom/handlers"
	"mindbloom/middleware"
	"mindbloom/models"
	"mindbloom/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterPageRoutes registers the public and signed-in pages.
func RegisterPageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/", hb.IndexHandler)
	r.GET("/about", hb.AboutHandler)
	r.GET("/home", middleware.RequireUser(), hb.HomeHandler)
}

// RegisterAuthRoutes registers login, signup and logout.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/login", hb.LoginPageHandler)
	r.POST("/login", hb.LoginHandler)
	r.GET("/signup", hb.SignupPageHandler)
	r.POST("/signup", hb.SignupHandler)
	r.POST("/logout", hb.LogoutHandler)
	r.GET("/logout", hb.LogoutHandler)
}

// RegisterAppointmentRoutes registers the booking flow and history pages.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	appointment := r.Group("/appointment")
	{
		appointment.Use(middleware.RequireUser())
		appointment.GET("", hb.AppointmentPageHandler)
		appointment.POST("/select-date", hb.SelectDateHandler)
		appointment.POST("/select-time", hb.SelectTimeHandler)
		appointment.POST("/book", hb.BookHandler)
		appointment.POST("/cancel", hb.CancelHandler)
		appointment.POST("/begin-reschedule", hb.BeginRescheduleHandler)
		appointment.POST("/reschedule", hb.RescheduleHandler)
		appointment.POST("/refresh", hb.RefreshSlotsHandler)
		appointment.POST("/reset", hb.ResetFlowHandler)
	}

	history := r.Group("/appointments")
	{
		history.Use(middleware.RequireUser())
		history.GET("", hb.HistoryPageHandler)
		history.POST("/:id/cancel", hb.HistoryCancelHandler)
	}
}

// RegisterChatRoutes registers the chatbot page and its JSON endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	chat := r.Group("/chatbot")
	{
		chat.Use(middleware.RequireUser())
		chat.GET("", hb.ChatPageHandler)
		chat.POST("/message", hb.ChatMessageHandler)
		chat.POST("/reset", hb.ChatResetHandler)
		chat.POST("/stt", hb.ChatSTTHandler)
	}
}

// RegisterResourceRoutes registers the recommendation listings and feedback.
func RegisterResourceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/"+models.KindBook, hb.BooksHandler)
	r.GET("/"+models.KindMovie, hb.MoviesHandler)
	r.GET("/"+models.KindSong, hb.SongsHandler)

	r.GET("/feedback", hb.FeedbackPageHandler)
	r.POST("/feedback", hb.FeedbackSubmitHandler)
}

// RegisterAdminRoutes sets up the counsellor login and dashboard.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/admin/login", hb.AdminLoginPageHandler)
	r.POST("/admin/login", hb.AdminLoginHandler)
	r.POST("/admin/logout", hb.AdminLogoutHandler)

	counsellor := r.Group("/counsellor")
	{
		counsellor.Use(middleware.RequireAdmin())
		counsellor.GET("", hb.CounsellorHandler)
		counsellor.POST("/appointments/:id/complete", hb.CounsellorCompleteHandler)
		counsellor.POST("/appointments/:id/cancel", hb.CounsellorCancelHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint backed by the
// snapshot the health monitor keeps.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		state := "ok"
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(code, gin.H{"status": state, "message": "Hi, I'm MindBloom", "checks": status})
	})
}

// RegisterRoutes centralizes registration of all endpoints. Global
// middleware other than CORS is installed by the caller.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterPageRoutes(r, hb)
	RegisterAuthRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterChatRoutes(r, hb)
	RegisterResourceRoutes(r, hb)
	RegisterAdminRoutes(r, hb)

	r.NoRoute(hb.NotFoundHandler)
}
