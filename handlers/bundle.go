// File: mindbloom/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Pages
	IndexHandler    gin.HandlerFunc
	HomeHandler     gin.HandlerFunc
	AboutHandler    gin.HandlerFunc
	NotFoundHandler gin.HandlerFunc

	// Auth
	LoginPageHandler  gin.HandlerFunc
	LoginHandler      gin.HandlerFunc
	SignupPageHandler gin.HandlerFunc
	SignupHandler     gin.HandlerFunc
	LogoutHandler     gin.HandlerFunc

	// Booking flow
	AppointmentPageHandler gin.HandlerFunc
	SelectDateHandler      gin.HandlerFunc
	SelectTimeHandler      gin.HandlerFunc
	BookHandler            gin.HandlerFunc
	CancelHandler          gin.HandlerFunc
	BeginRescheduleHandler gin.HandlerFunc
	RescheduleHandler      gin.HandlerFunc
	RefreshSlotsHandler    gin.HandlerFunc
	ResetFlowHandler       gin.HandlerFunc

	// Appointment history
	HistoryPageHandler   gin.HandlerFunc
	HistoryCancelHandler gin.HandlerFunc

	// Chatbot
	ChatPageHandler    gin.HandlerFunc
	ChatMessageHandler gin.HandlerFunc
	ChatResetHandler   gin.HandlerFunc
	ChatSTTHandler     gin.HandlerFunc

	// Resources
	BooksHandler  gin.HandlerFunc
	MoviesHandler gin.HandlerFunc
	SongsHandler  gin.HandlerFunc

	// Feedback
	FeedbackPageHandler   gin.HandlerFunc
	FeedbackSubmitHandler gin.HandlerFunc

	// Counsellor dashboard
	AdminLoginPageHandler     gin.HandlerFunc
	AdminLoginHandler         gin.HandlerFunc
	AdminLogoutHandler        gin.HandlerFunc
	CounsellorHandler         gin.HandlerFunc
	CounsellorCompleteHandler gin.HandlerFunc
	CounsellorCancelHandler   gin.HandlerFunc
}
