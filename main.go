// File: mindbloom/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindbloom/config"
	"mindbloom/cron"
	"mindbloom/database"
	feedbackRepo "mindbloom/database/repository/feedback"
	"mindbloom/handlers"
	"mindbloom/middleware"
	"mindbloom/models"
	"mindbloom/routes"
	"mindbloom/services/booking"
	"mindbloom/services/feedback"
	"mindbloom/services/intelligence"
	"mindbloom/services/notification"
	"mindbloom/services/phms"
	"mindbloom/services/resources"
	"mindbloom/services/tasks"
	"mindbloom/templates"
	"mindbloom/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	cfg := config.AppConfig
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	utils.InitRedis()
	mongoEnabled, err := database.InitDB()
	if err != nil {
		logger.Fatal("main: failed to initialize MongoDB", zap.Error(err))
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	utils.StartHealthMonitor(rootCtx, []*redis.Client{utils.GetSessionClient(), utils.GetCacheClient()}, database.MongoClient)

	// Backend client and stores.
	api := phms.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger.Named("phms"))
	sessions := utils.NewSessionStore(utils.GetSessionClient(), cfg.SessionTTL)
	if cfg.SessionSecret != "" {
		sealer, err := utils.NewSealer(cfg.SessionSecret)
		if err != nil {
			logger.Fatal("main: failed to create session sealer", zap.Error(err))
		}
		sessions.WithSealer(sealer)
	} else {
		logger.Warn("main: SESSION_SECRET not set, backend tokens are stored unencrypted")
	}
	flows := booking.NewFlowStore(utils.GetCacheClient(), cfg.FlowTTL)
	notices := notification.NewRedisInbox(utils.GetCacheClient())

	// Reminders.
	var reminders tasks.Scheduler = tasks.NopScheduler{}
	var worker *asynq.Server
	if cfg.RemindersEnabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisReminderDB,
		}
		scheduler := tasks.NewAsynqScheduler(redisOpt, logger.Named("reminders"))
		defer scheduler.Close()
		reminders = scheduler
		worker = cron.InitReminderWorker(redisOpt, notices, logger.Named("worker"))
	}

	// Chatbot.
	var responder intelligence.Responder = intelligence.NewLocalResponder()
	if cfg.GeminiAPIKey != "" {
		gemini, err := intelligence.NewGeminiResponder(rootCtx, cfg.GeminiAPIKey, cfg.GeminiModel, responder, logger.Named("gemini"))
		if err != nil {
			logger.Warn("main: Gemini unavailable, using local responder", zap.Error(err))
		} else {
			defer gemini.Close()
			responder = gemini
		}
	}
	chat := intelligence.NewChatService(
		intelligence.NewConversationStore(utils.GetCacheClient(), cfg.ChatHistoryTTL),
		responder,
		logger.Named("chat"),
	)

	var stt intelligence.Transcriber
	if cfg.GoogleServiceAccountFile != "" {
		speech, err := intelligence.NewSpeechTranscriber(rootCtx, cfg.GoogleServiceAccountFile, logger.Named("speech"))
		if err != nil {
			logger.Warn("main: speech-to-text unavailable", zap.Error(err))
		} else {
			defer speech.Close()
			stt = speech
		}
	}

	// Resources and feedback.
	catalog, err := resources.Load()
	if err != nil {
		logger.Fatal("main: failed to load resource catalog", zap.Error(err))
	}

	var fbRepo feedbackRepo.FeedbackRepository = feedbackRepo.NewLogFeedbackRepo(logger.Named("feedback"))
	if mongoEnabled {
		fbRepo = feedbackRepo.NewMongoFeedbackRepo(database.Database(), logger.Named("feedback"))
	}
	feedbackService := feedback.NewService(fbRepo)

	// Handlers.
	pageHandler := handlers.NewPageHandler(notices)
	authHandler := handlers.NewAuthHandler(api, flows)
	appointmentHandler := handlers.NewAppointmentHandler(api, flows, reminders, logger.Named("booking"))
	historyHandler := handlers.NewHistoryHandler(api, flows, reminders)
	chatHandler := handlers.NewChatHandler(chat, stt)
	resourceHandler := handlers.NewResourceHandler(catalog)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	adminHandler := handlers.NewAdminHandler(api, handlers.AdminCredentials{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
		APIToken:     cfg.AdminAPIToken,
	}, reminders)

	handlerBundle := &handlers.HandlerBundle{
		IndexHandler:    pageHandler.Index,
		HomeHandler:     pageHandler.Home,
		AboutHandler:    pageHandler.About,
		NotFoundHandler: handlers.NotFound,

		LoginPageHandler:  authHandler.LoginPage,
		LoginHandler:      authHandler.Login,
		SignupPageHandler: authHandler.SignupPage,
		SignupHandler:     authHandler.Signup,
		LogoutHandler:     authHandler.Logout,

		AppointmentPageHandler: appointmentHandler.Page,
		SelectDateHandler:      appointmentHandler.SelectDate,
		SelectTimeHandler:      appointmentHandler.SelectTime,
		BookHandler:            appointmentHandler.Book,
		CancelHandler:          appointmentHandler.Cancel,
		BeginRescheduleHandler: appointmentHandler.BeginReschedule,
		RescheduleHandler:      appointmentHandler.Reschedule,
		RefreshSlotsHandler:    appointmentHandler.Refresh,
		ResetFlowHandler:       appointmentHandler.Reset,

		HistoryPageHandler:   historyHandler.Page,
		HistoryCancelHandler: historyHandler.Cancel,

		ChatPageHandler:    chatHandler.Page,
		ChatMessageHandler: chatHandler.Message,
		ChatResetHandler:   chatHandler.Reset,
		ChatSTTHandler:     chatHandler.SpeechToText,

		BooksHandler:  resourceHandler.List(models.KindBook),
		MoviesHandler: resourceHandler.List(models.KindMovie),
		SongsHandler:  resourceHandler.List(models.KindSong),

		FeedbackPageHandler:   feedbackHandler.Page,
		FeedbackSubmitHandler: feedbackHandler.Submit,

		AdminLoginPageHandler:     adminHandler.LoginPage,
		AdminLoginHandler:         adminHandler.Login,
		AdminLogoutHandler:        adminHandler.Logout,
		CounsellorHandler:         adminHandler.Dashboard,
		CounsellorCompleteHandler: adminHandler.Complete,
		CounsellorCancelHandler:   adminHandler.Cancel,
	}

	// Create the Gin router.
	tmpl, err := templates.Load()
	if err != nil {
		logger.Fatal("main: failed to parse templates", zap.Error(err))
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = intelligence.MaxAudioSize + 1<<20
	router.Use(middleware.RequestLogger(logger))
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	router.Use(middleware.SessionMiddleware(sessions, cfg.SessionCookie, cfg.SecureCookies))

	routes.RegisterRoutes(router, handlerBundle, cfg.AllowedOrigins)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to disconnect MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
