package messages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/belaychat/belay/backend/internal/ids"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceError carries a stable operation code alongside the underlying cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the stable error code for the failed operation.
func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew  = "messages.service.new"
	opPost        = "messages.post"
	opPostReply   = "messages.post_reply"
	opListChannel = "messages.list_channel"
	opListReplies = "messages.list_replies"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the dependencies required by the message ledger.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service appends messages and replies and serves channel and thread listings.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService constructs the message ledger service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		db:     cfg.Database,
		clock:  clock,
		logger: logger,
	}, nil
}

// Post appends a top-level message with a server-assigned timestamp at second
// resolution.
func (s *Service) Post(ctx context.Context, author ids.UserID, channelID ids.ChannelID, body string) error {
	message := Message{
		UserID:      author.Int64(),
		ChannelID:   channelID.Int64(),
		Body:        body,
		PostedAtSec: s.clock().Unix(),
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		s.logError(opPost, "insert_failed", err,
			zap.Int64("user_id", author.Int64()),
			zap.Int64("channel_id", channelID.Int64()))
		return newServiceError(opPost, "insert_failed", err)
	}
	return nil
}

// PostReply appends a reply referencing the parent message. It is the callers'
// responsibility that the parent exists in the given channel; the ledger does
// not validate the reference.
func (s *Service) PostReply(ctx context.Context, author ids.UserID, channelID ids.ChannelID, parent ids.MessageID, body string) error {
	parentID := parent.Int64()
	message := Message{
		UserID:      author.Int64(),
		ChannelID:   channelID.Int64(),
		Body:        body,
		PostedAtSec: s.clock().Unix(),
		RepliedTo:   &parentID,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		s.logError(opPostReply, "insert_failed", err,
			zap.Int64("user_id", author.Int64()),
			zap.Int64("channel_id", channelID.Int64()),
			zap.Int64("parent_id", parentID))
		return newServiceError(opPostReply, "insert_failed", err)
	}
	return nil
}

type channelMessageRow struct {
	MessageID  int64  `gorm:"column:message_id"`
	Username   string `gorm:"column:username"`
	Body       string `gorm:"column:body"`
	ReplyCount int64  `gorm:"column:reply_count"`
}

// ListChannelMessages returns the top-level messages of a channel, joined with
// author names and annotated with same-channel reply counts. Ordering is
// storage order and not guaranteed chronological.
func (s *Service) ListChannelMessages(ctx context.Context, channelID ids.ChannelID) (map[ids.MessageID]ChannelMessage, error) {
	const query = `
		SELECT m.id AS message_id, u.name AS username, m.body AS body,
			(SELECT COUNT(*) FROM messages AS r
				WHERE r.replied_to = m.id AND r.channel_id = m.channel_id) AS reply_count
		FROM messages AS m
		LEFT JOIN users AS u ON u.id = m.user_id
		WHERE m.channel_id = ? AND m.replied_to IS NULL`

	var rows []channelMessageRow
	if err := s.db.WithContext(ctx).Raw(query, channelID.Int64()).Scan(&rows).Error; err != nil {
		s.logError(opListChannel, "query_failed", err, zap.Int64("channel_id", channelID.Int64()))
		return nil, newServiceError(opListChannel, "query_failed", err)
	}

	listing := make(map[ids.MessageID]ChannelMessage, len(rows))
	for _, row := range rows {
		messageID, err := ids.NewMessageID(row.MessageID)
		if err != nil {
			return nil, newServiceError(opListChannel, "invalid_row_id", err)
		}
		listing[messageID] = ChannelMessage{
			Username:   row.Username,
			Body:       row.Body,
			ReplyCount: row.ReplyCount,
		}
	}
	return listing, nil
}

type replyRow struct {
	MessageID int64  `gorm:"column:message_id"`
	Username  string `gorm:"column:username"`
	Body      string `gorm:"column:body"`
}

// ListReplies returns every reply to the parent message. The channel filter is
// redundant with the reply-channel invariant but preserved for compatibility.
func (s *Service) ListReplies(ctx context.Context, parent ids.MessageID, channelID ids.ChannelID) (map[ids.MessageID]Reply, error) {
	const query = `
		SELECT m.id AS message_id, u.name AS username, m.body AS body
		FROM messages AS m
		LEFT JOIN users AS u ON u.id = m.user_id
		WHERE m.replied_to = ? AND m.channel_id = ?`

	var rows []replyRow
	if err := s.db.WithContext(ctx).Raw(query, parent.Int64(), channelID.Int64()).Scan(&rows).Error; err != nil {
		s.logError(opListReplies, "query_failed", err,
			zap.Int64("parent_id", parent.Int64()),
			zap.Int64("channel_id", channelID.Int64()))
		return nil, newServiceError(opListReplies, "query_failed", err)
	}

	listing := make(map[ids.MessageID]Reply, len(rows))
	for _, row := range rows {
		messageID, err := ids.NewMessageID(row.MessageID)
		if err != nil {
			return nil, newServiceError(opListReplies, "invalid_row_id", err)
		}
		listing[messageID] = Reply{
			Username: row.Username,
			Body:     row.Body,
		}
	}
	return listing, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("message ledger error", attrs...)
}
