package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/belaychat/belay/backend/internal/channels"
	"github.com/belaychat/belay/backend/internal/messages"
	"github.com/belaychat/belay/backend/internal/reactions"
	"github.com/belaychat/belay/backend/internal/unread"
	"github.com/belaychat/belay/backend/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userIDContextKey = "belay_user_id"

var (
	errMissingUsersService     = errors.New("users service dependency required")
	errMissingChannelsService  = errors.New("channels service dependency required")
	errMissingMessagesService  = errors.New("messages service dependency required")
	errMissingUnreadService    = errors.New("unread service dependency required")
	errMissingReactionsService = errors.New("reactions service dependency required")
)

// Dependencies lists the domain services the HTTP surface dispatches to.
type Dependencies struct {
	Users     *users.Service
	Channels  *channels.Service
	Messages  *messages.Service
	Unread    *unread.Service
	Reactions *reactions.Service
	Logger    *zap.Logger
}

// NewHTTPHandler wires the API routes. Endpoints keep the historical split
// between 401 rejections (account and channel management) and 403 rejections
// (message, unread and reaction traffic) for client compatibility.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Users == nil {
		return nil, errMissingUsersService
	}
	if deps.Channels == nil {
		return nil, errMissingChannelsService
	}
	if deps.Messages == nil {
		return nil, errMissingMessagesService
	}
	if deps.Unread == nil {
		return nil, errMissingUnreadService
	}
	if deps.Reactions == nil {
		return nil, errMissingReactionsService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type", "username", "password", "message_id", "channel_id"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		users:     deps.Users,
		channels:  deps.Channels,
		messages:  deps.Messages,
		unread:    deps.Unread,
		reactions: deps.Reactions,
		logger:    logger,
	}

	router.POST("/api/signup", handler.handleSignup)
	router.POST("/api/login", handler.handleLogin)

	account := router.Group("/api")
	account.Use(handler.authorize(http.StatusUnauthorized))
	account.POST("/users/name", handler.handleRenameUser)
	account.POST("/users/password", handler.handleChangePassword)
	account.POST("/channels/new", handler.handleCreateChannel)
	account.GET("/channels", handler.handleListChannels)
	account.POST("/channels/rename", handler.handleRenameChannel)

	traffic := router.Group("/api")
	traffic.Use(handler.authorize(http.StatusForbidden))
	traffic.POST("/messages", handler.handlePostMessage)
	traffic.GET("/messages/:channel_id", handler.handleListMessages)
	traffic.POST("/replies", handler.handlePostReply)
	traffic.GET("/replies/:message_id", handler.handleListReplies)
	traffic.POST("/unreads/update", handler.handleMarkSeen)
	traffic.GET("/unreads/count", handler.handleUnreadCounts)
	traffic.POST("/reactions", handler.handleAddReaction)

	return router, nil
}

type httpHandler struct {
	users     *users.Service
	channels  *channels.Service
	messages  *messages.Service
	unread    *unread.Service
	reactions *reactions.Service
	logger    *zap.Logger
}
