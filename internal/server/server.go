package server

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/thereayou/pingme/internal/access"
	"github.com/thereayou/pingme/internal/database"
	"github.com/thereayou/pingme/internal/handlers"
	ws "github.com/thereayou/pingme/internal/websocket"
	"github.com/thereayou/pingme/pkg/auth"
)

type Server struct {
	Router *gin.Engine
	DB     *database.Database
	Redis  *redis.Client
	Hub    *ws.Hub
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	db := &database.Database{}
	if err := db.Connect(); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	hub := ws.NewHub()
	authorizer := access.NewAuthorizer(db)
	eventH := handlers.NewEventHandler(db, hub)

	authH := handlers.NewAuthHandler(db, jwtMgr, rdb)
	wsH := handlers.NewWebSocketHandler(hub, eventH, authorizer, db)
	convH := handlers.NewConversationHandler(db)
	groupH := handlers.NewGroupHandler(db)
	channelH := handlers.NewChannelHandler(db)
	contactH := handlers.NewContactHandler(db)
	messageH := handlers.NewMessageHandler(db, authorizer)
	uploadH := handlers.NewUploadHandler(db, authorizer, uploadDir)

	router := gin.Default()
	router.Static("/uploads", uploadDir)
	APIEndpoints(router, jwtMgr, rdb, authH, wsH, convH, groupH, channelH, contactH, messageH, uploadH)

	return &Server{
		Router: router,
		DB:     db,
		Redis:  rdb,
		Hub:    hub,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
