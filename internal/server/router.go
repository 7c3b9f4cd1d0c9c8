package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/thereayou/pingme/internal/handlers"
	"github.com/thereayou/pingme/internal/middleware"
	"github.com/thereayou/pingme/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *auth.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	wsH *handlers.WebSocketHandler,
	convH *handlers.ConversationHandler,
	groupH *handlers.GroupHandler,
	channelH *handlers.ChannelHandler,
	contactH *handlers.ContactHandler,
	messageH *handlers.MessageHandler,
	uploadH *handlers.UploadHandler,
) {
	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/otp/request", authH.RequestOTP)
		authGroup.POST("/otp/verify", authH.VerifyOTP)
	}

	authRequired := middleware.AuthMiddleware(jwtMgr, rdb)

	r.POST("/auth/logout", authRequired, authH.Logout)

	// Живой канал: одно соединение — одна комната
	r.GET("/ws/:kind/:id", authRequired, wsH.HandleWebSocket)

	// API endpoints
	api := r.Group("/api/v1", authRequired)
	{
		api.GET("/conversations", convH.ListConversations)
		api.POST("/conversations", convH.StartConversation)
		api.GET("/conversations/:id", convH.GetConversation)
		api.DELETE("/conversations/:id", convH.DeleteConversation)

		api.GET("/groups", groupH.MyGroups)
		api.POST("/groups", groupH.CreateGroup)
		api.GET("/groups/:id", groupH.GetGroup)
		api.PATCH("/groups/:id", groupH.UpdateGroup)
		api.DELETE("/groups/:id", groupH.DeleteGroup)
		api.POST("/groups/:id/members", groupH.AddMember)
		api.DELETE("/groups/:id/members/:userID", groupH.RemoveMember)

		api.GET("/channels", channelH.ListChannels)
		api.POST("/channels", channelH.CreateChannel)
		api.GET("/channels/:id", channelH.GetChannel)
		api.PATCH("/channels/:id", channelH.UpdateChannel)
		api.DELETE("/channels/:id", channelH.DeleteChannel)
		api.POST("/channels/:id/subscribe", channelH.Subscribe)
		api.DELETE("/channels/:id/subscribe", channelH.Unsubscribe)

		api.GET("/contacts", contactH.ListContacts)
		api.POST("/contacts", contactH.AddContact)
		api.POST("/contacts/:id/chat", contactH.StartChatFromContact)
		api.GET("/users/:id/profile", contactH.GetProfile)

		api.GET("/rooms/:kind/:id/messages", messageH.RoomMessages)
		api.DELETE("/rooms/:kind/:id", messageH.DeleteRoom)
		api.POST("/rooms/:kind/:id/upload", uploadH.Upload)

		api.DELETE("/messages/:id", messageH.HardDeleteMessage)
		api.POST("/messages/:id/forward", messageH.ForwardMessage)
		api.POST("/messages/bulk-delete", messageH.BulkDeleteMessages)
		api.POST("/messages/bulk-forward", messageH.BulkForwardMessages)
	}
}
