package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/greenprint-app/greenprint-backend/internal/auth"
	"github.com/greenprint-app/greenprint-backend/internal/cache"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/handlers"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/middleware"
	"github.com/greenprint-app/greenprint-backend/internal/notify"
	"github.com/greenprint-app/greenprint-backend/internal/purge"
	"github.com/greenprint-app/greenprint-backend/internal/websocket"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Initialize(envOr("LOG_LEVEL", "info"), envOr("LOG_FILE", "logs/greenprint.log")); err != nil {
		panic(err)
	}
	defer logger.Close()

	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("database initialization failed", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("database migration failed", zap.Error(err))
	}

	cache.Initialize()
	defer cache.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Log.Fatal("JWT_SECRET is required")
	}

	hub := websocket.NewHub()
	go hub.Run()
	wsHandler := websocket.NewHandler(hub, []byte(jwtSecret))

	notifySvc := notify.NewService(wsHandler)
	authSvc := auth.NewService([]byte(jwtSecret), 7*24*time.Hour)
	h := handlers.New(wsHandler, notifySvc, authSvc)

	purgeSvc := purge.NewService(purge.DefaultRetention, purge.DefaultInterval)
	purgeSvc.Start()
	defer purgeSvc.Stop()

	router := buildRouter(h, wsHandler)

	srv := &http.Server{
		Addr:              ":" + envOr("PORT", "8080"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("http shutdown failed", zap.Error(err))
	}
	if err := wsHandler.Shutdown(ctx); err != nil {
		logger.Log.Error("websocket shutdown failed", zap.Error(err))
	}
}

func buildRouter(h *handlers.Handlers, ws *websocket.Handler) *gin.Engine {
	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.GinRecovery(),
		middleware.RequestID(),
		middleware.GinLogger(),
		middleware.PrometheusMetrics(),
		gzip.Gzip(gzip.DefaultCompression),
		cors.New(cors.Config{
			AllowOrigins:     corsOrigins(),
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.GET("/health", func(c *gin.Context) {
		if err := database.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimit())

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimit())
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	api.GET("/ws", ws.HandleWebSocket)

	authed := api.Group("")
	authed.Use(h.AuthMiddleware())
	{
		authed.GET("/ws/metrics", ws.HandleMetrics)
		authed.POST("/ws/online", ws.HandleOnlineStatus)

		authed.GET("/users/me", h.GetMe)
		authed.PUT("/users/me", h.UpdateMe)
		authed.GET("/users/:id", h.GetUserProfile)

		authed.POST("/posts", h.CreatePost)
		authed.GET("/posts", h.ListPosts)
		authed.GET("/posts/:id", h.GetPost)
		authed.DELETE("/posts/:id", h.DeletePost)
		authed.POST("/posts/:id/like", h.ToggleLike)
		authed.POST("/posts/:id/comments", h.CreateComment)
		authed.GET("/posts/:id/comments", h.ListComments)
		authed.DELETE("/posts/:id/comments/:commentId", h.DeleteComment)

		authed.POST("/stories", h.CreateStory)
		authed.GET("/stories", h.ListStories)
		authed.GET("/stories/mine", h.ListMyStories)
		authed.GET("/stories/:id", h.GetStory)
		authed.DELETE("/stories/:id", h.DeleteStory)
		authed.POST("/stories/:id/like", h.ToggleStoryLike)

		authed.GET("/friends", h.ListFriends)
		authed.GET("/friends/recommendations", h.FriendRecommendations)
		authed.GET("/friends/requests", h.ListFriendRequests)
		authed.POST("/friends/requests/:id", h.SendFriendRequest)
		authed.PUT("/friends/requests/:id/accept", h.AcceptFriendRequest)
		authed.PUT("/friends/requests/:id/reject", h.RejectFriendRequest)
		authed.DELETE("/friends/requests/:id", h.CancelFriendRequest)
		authed.DELETE("/friends/:id", h.Unfriend)

		authed.GET("/notifications", h.ListNotifications)
		authed.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
		authed.PUT("/notifications/:id/read", h.MarkNotificationRead)
		authed.DELETE("/notifications/:id", h.DeleteNotification)
		authed.GET("/notifications/settings", h.GetNotificationSettings)
		authed.PUT("/notifications/settings", h.UpdateNotificationSettings)

		authed.POST("/calculations", h.CreateCalculation)
		authed.GET("/calculations", h.ListCalculations)

		authed.GET("/leaderboard", h.GetLeaderboard)

		authed.POST("/reports", h.CreateReport)
	}

	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware(), middleware.RequireAdmin())
	{
		admin.GET("/users", h.AdminListUsers)
		admin.PUT("/users/:id/ban", h.AdminSetBan)
		admin.PUT("/users/:id/admin", h.AdminSetAdmin)
		admin.GET("/stats", h.AdminStats)
		admin.GET("/stories/pending", h.AdminListPendingStories)
		admin.PUT("/stories/:id/approve", h.AdminApproveStory)
		admin.PUT("/stories/:id/reject", h.AdminRejectStory)
		admin.GET("/reports", h.AdminListReports)
		admin.PUT("/reports/:id", h.AdminUpdateReport)
	}

	return router
}

func corsOrigins() []string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		return []string{origins}
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
