package reactions

import (
	"context"
	"fmt"

	"github.com/belaychat/belay/backend/internal/ids"
	"github.com/belaychat/belay/backend/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ServiceConfig describes the dependencies required by the reaction store.
type ServiceConfig struct {
	Database *gorm.DB
	Users    *users.Service
	Logger   *zap.Logger
}

// Service records idempotent emoji reactions on messages.
type Service struct {
	db     *gorm.DB
	users  *users.Service
	logger *zap.Logger
}

// NewService constructs the reaction store service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("reactions: database connection required")
	}
	if cfg.Users == nil {
		return nil, fmt.Errorf("reactions: users service required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     cfg.Database,
		users:  cfg.Users,
		logger: logger,
	}, nil
}

// Add records a reaction. A duplicate (user, message, emoji) triple is a
// reported-success no-op: created is false and the username is empty. A fresh
// insert returns the reacting user's current display name.
func (s *Service) Add(ctx context.Context, userID ids.UserID, messageID ids.MessageID, emoji string) (string, bool, error) {
	reaction := Reaction{
		UserID:    userID.Int64(),
		MessageID: messageID.Int64(),
		Emoji:     emoji,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "message_id"}, {Name: "emoji"}},
			DoNothing: true,
		}).
		Create(&reaction)
	if result.Error != nil {
		s.logger.Error("reaction insert failed", zap.Error(result.Error),
			zap.Int64("user_id", userID.Int64()),
			zap.Int64("message_id", messageID.Int64()))
		return "", false, result.Error
	}
	if result.RowsAffected == 0 {
		return "", false, nil
	}

	name, err := s.users.DisplayName(ctx, userID)
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}
