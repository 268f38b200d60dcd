package server

import (
	"errors"
	"net/http"

	"github.com/belaychat/belay/backend/internal/ids"
	"github.com/belaychat/belay/backend/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type credentialResponsePayload struct {
	APIKey string `json:"api_key"`
}

func (h *httpHandler) handleSignup(c *gin.Context) {
	apiKey, err := h.users.Signup(c.Request.Context())
	if err != nil {
		h.logger.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup_failed"})
		return
	}
	c.JSON(http.StatusOK, credentialResponsePayload{APIKey: apiKey})
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	// Login credentials travel in headers, not the body. Existing clients
	// depend on this shape.
	name := c.GetHeader("username")
	password := c.GetHeader("password")

	apiKey, err := h.users.Authenticate(c.Request.Context(), name, password)
	switch {
	case errors.Is(err, users.ErrUnknownUser):
		c.JSON(http.StatusNotFound, gin.H{})
	case errors.Is(err, users.ErrBadPassword):
		c.JSON(http.StatusUnauthorized, gin.H{})
	case err != nil:
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login_failed"})
	default:
		c.JSON(http.StatusOK, credentialResponsePayload{APIKey: apiKey})
	}
}

type renameUserRequestPayload struct {
	NewUsername string `json:"newUsername"`
}

func (h *httpHandler) handleRenameUser(c *gin.Context) {
	userID, ok := h.requestUser(c)
	if !ok {
		return
	}
	var request renameUserRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.users.Rename(c.Request.Context(), userID, request.NewUsername); err != nil {
		h.logger.Error("user rename failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rename_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

type changePasswordRequestPayload struct {
	NewUserPassword string `json:"newUserPassword"`
}

func (h *httpHandler) handleChangePassword(c *gin.Context) {
	userID, ok := h.requestUser(c)
	if !ok {
		return
	}
	var request changePasswordRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), userID, request.NewUserPassword); err != nil {
		h.logger.Error("password change failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password_change_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

type createChannelResponsePayload struct {
	ChannelName string `json:"channel_name"`
	ChannelID   int64  `json:"channel_id"`
}

func (h *httpHandler) handleCreateChannel(c *gin.Context) {
	userID, ok := h.requestUser(c)
	if !ok {
		return
	}
	channelID, name, err := h.channels.Create(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("channel create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "channel_create_failed"})
		return
	}
	c.JSON(http.StatusOK, createChannelResponsePayload{
		ChannelName: name,
		ChannelID:   channelID.Int64(),
	})
}

func (h *httpHandler) handleListChannels(c *gin.Context) {
	listing, err := h.channels.List(c.Request.Context())
	if err != nil {
		h.logger.Error("channel list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "channel_list_failed"})
		return
	}
	response := make(map[string]string, len(listing))
	for channelID, name := range listing {
		response[channelID.String()] = name
	}
	c.JSON(http.StatusOK, response)
}

type renameChannelRequestPayload struct {
	Name      string `json:"name"`
	ChannelID int64  `json:"channel_id"`
}

func (h *httpHandler) handleRenameChannel(c *gin.Context) {
	var request renameChannelRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	channelID, err := ids.NewChannelID(request.ChannelID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.channels.Rename(c.Request.Context(), channelID, request.Name); err != nil {
		h.logger.Error("channel rename failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "channel_rename_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

type postMessageRequestPayload struct {
	Body      string `json:"body"`
	ChannelID int64  `json:"channel_id"`
}

func (h *httpHandler) handlePostMessage(c *gin.Context) {
	userID, ok := h.requestUser(c)
	if !ok {
		return
	}
	var request postMessageRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	channelID, err := ids.NewChannelID(request.ChannelID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.messages.Post(c.Request.Context(), userID, channelID, request.Body); err != nil {
		h.logger.Error("message post failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "message_post_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

type channelMessagePayload struct {
	Username     string `json:"username"`
	Body         string `json:"body"`
	RepliesCount int64  `json:"replies_count"`
}

func (h *httpHandler) handleListMessages(c *gin.Context) {
	channelID, err := ids.ParseChannelID(c.Param("channel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	listing, err := h.messages.ListChannelMessages(c.Request.Context(), channelID)
	if err != nil {
		h.logger.Error("message list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "message_list_failed"})
		return
	}
	response := make(map[string]channelMessagePayload, len(listing))
	for messageID, message := range listing {
		response[messageID.String()] = channelMessagePayload{
			Username:     message.Username,
			Body:         message.Body,
			RepliesCount: message.ReplyCount,
		}
	}
	c.JSON(http.StatusOK, response)
}

type postReplyRequestPayload struct {
	Body      string `json:"body"`
	MessageID int64  `json:"message_id"`
	ChannelID int64  `json:"channel_id"`
}

func (h *httpHandler) handlePostReply(c *gin.Context) {
	userID, ok := h.requestUser(c)
	if !ok {
		return
	}
	var request postReplyRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	channelID, err := ids.NewChannelID(request.ChannelID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	parentID, err := ids.NewMessageID(request.MessageID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.messages.PostReply(c.Request.Context(), userID, channelID, parentID, request.Body); err != nil {
		h.logger.Error("reply post failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reply_post_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

type replyPayload struct {
	Username string `json:"username"`
	Body     string `json:"body"`
}

func (h *httpHandler) handleListReplies(c *gin.Context) {
	// The parent and channel arrive in headers; the path parameter is
	// ignored. Existing clients send both and servers have always read
	// the headers.
	parentID, err := ids.ParseMessageID(c.GetHeader("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	channelID, err := ids.ParseChannelID(c.GetHeader("channel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	listing, err := h.messages.ListReplies(c.Request.Context(), parentID, channelID)
	if err != nil {
		h.logger.Error("reply list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reply_list_failed"})
		return
	}
	response := make(map[string]replyPayload, len(listing))
	for messageID, reply := range listing {
		response[messageID.String()] = replyPayload{
			Username: reply.Username,
			Body:     reply.Body,
		}
	}
	c.JSON(http.StatusOK, response)
}

type markSeenRequestPayload struct {
	ChannelID int64 `json:"channel_id"`
}

func (h *httpHandler) handleMarkSeen(c *gin.Context) {
	userID, ok := h.requestUser(c)
	if !ok {
		return
	}
	var request markSeenRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	channelID, err := ids.NewChannelID(request.ChannelID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.unread.MarkSeen(c.Request.Context(), userID, channelID); err != nil {
		h.logger.Error("mark seen failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mark_seen_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *httpHandler) handleUnreadCounts(c *gin.Context) {
	userID, ok := h.requestUser(c)
	if !ok {
		return
	}
	counts, err := h.unread.Counts(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("unread count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unread_count_failed"})
		return
	}
	response := make(map[string]int64, len(counts))
	for channelID, count := range counts {
		response[channelID.String()] = count
	}
	c.JSON(http.StatusOK, response)
}

type addReactionRequestPayload struct {
	Emoji     string `json:"emoji"`
	MessageID int64  `json:"message_id"`
}

func (h *httpHandler) handleAddReaction(c *gin.Context) {
	userID, ok := h.requestUser(c)
	if !ok {
		return
	}
	var request addReactionRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	messageID, err := ids.NewMessageID(request.MessageID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	name, created, err := h.reactions.Add(c.Request.Context(), userID, messageID, request.Emoji)
	if err != nil {
		h.logger.Error("reaction add failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reaction_add_failed"})
		return
	}
	if !created {
		// Duplicate reaction: reported success with an empty body, the
		// response shape clients already expect for this branch.
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_name": name})
}

func (h *httpHandler) requestUser(c *gin.Context) (ids.UserID, bool) {
	userID, err := ids.NewUserID(c.GetInt64(userIDContextKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return 0, false
	}
	return userID, true
}
