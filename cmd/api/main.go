package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/socialgraph/socialgraph/internal/config"
	"github.com/socialgraph/socialgraph/internal/handlers"
	"github.com/socialgraph/socialgraph/internal/middleware"
	"github.com/socialgraph/socialgraph/internal/repository"
	"github.com/socialgraph/socialgraph/internal/services"
	"github.com/socialgraph/socialgraph/pkg/cache"
	"github.com/socialgraph/socialgraph/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level)
	logger.Info("Starting social graph API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)

	notificationService := services.NewNotificationService(notificationRepo, logger)
	userService := services.NewUserService(userRepo, followRepo, notificationService, logger)
	postService := services.NewPostService(postRepo, commentRepo, likeRepo, logger)
	commentService := services.NewCommentService(commentRepo, postRepo, likeRepo, notificationService, logger)
	likeService := services.NewLikeService(likeRepo, postRepo, commentRepo, notificationService, logger)
	feedService := services.NewFeedService(followRepo, postRepo, commentRepo, likeRepo, logger)

	userHandler := handlers.NewUserHandler(userService, redisClient, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	postHandler := handlers.NewPostHandler(postService)
	commentHandler := handlers.NewCommentHandler(commentService)
	likeHandler := handlers.NewLikeHandler(likeService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	feedHandler := handlers.NewFeedHandler(feedService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.GET("/search", userHandler.SearchUsers)
			users.GET("/:id", userHandler.GetProfile)
			users.GET("/:id/followers", userHandler.GetFollowers)
			users.GET("/:id/following", userHandler.GetFollowing)
		}

		protected := api.Group("")
		protected.Use(middleware.NewJWTAuth(&middleware.JWTConfig{
			Secret:      cfg.JWT.Secret,
			Revocations: redisClient,
		}))
		{
			protected.POST("/users/logout", userHandler.Logout)
			protected.GET("/users/profile", userHandler.GetMyProfile)
			protected.PUT("/users/profile", userHandler.UpdateProfile)
			protected.POST("/users/follow", userHandler.Follow)
			protected.DELETE("/users/unfollow/:id", userHandler.Unfollow)
			protected.GET("/users/suggestions", userHandler.Suggestions)
			protected.GET("/users/:id/posts", postHandler.GetUserPosts)

			protected.POST("/posts", postHandler.Create)
			protected.GET("/posts", postHandler.List)
			protected.GET("/posts/search", postHandler.Search)
			protected.GET("/posts/:id", postHandler.Get)
			protected.PUT("/posts/:id", postHandler.Update)
			protected.DELETE("/posts/:id", postHandler.Delete)

			protected.POST("/posts/:id/comments", commentHandler.Create)
			protected.GET("/posts/:id/comments", commentHandler.ListByPost)
			protected.PUT("/comments/:id", commentHandler.Update)
			protected.DELETE("/comments/:id", commentHandler.Delete)

			protected.POST("/posts/:id/like", likeHandler.LikePost)
			protected.POST("/comments/:id/like", likeHandler.LikeComment)
			protected.GET("/likes/mine", likeHandler.MyLikes)

			protected.GET("/feed", feedHandler.GetFeed)

			protected.GET("/notifications", notificationHandler.List)
			protected.GET("/notifications/count", notificationHandler.Count)
			protected.GET("/notifications/stats", notificationHandler.Stats)
			protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
			protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll("configs", 0755); err != nil {
			log.Printf("Failed to create configs directory: %v", err)
			return
		}
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "socialuser"
  password: "socialpass"
  dbname: "socialgraph"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 24h

log:
  level: "info"`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
