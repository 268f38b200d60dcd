package unread

import (
	"context"
	"fmt"
	"time"

	"github.com/belaychat/belay/backend/internal/ids"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// neverSeenSentinel stands in for the last-seen time of a channel the user has
// never viewed, so every message in it counts as unread.
const neverSeenSentinel = int64(0)

// ServiceConfig describes the dependencies required by the unread tracker.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service tracks per-(user, channel) last-seen markers and derives unread
// counts from message timestamps.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService constructs the unread tracker service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("unread: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     cfg.Database,
		clock:  clock,
		logger: logger,
	}, nil
}

// MarkSeen upserts the current time into the marker keyed by (user, channel).
// The conflict-handling upsert replaces a racy check-then-write sequence.
func (s *Service) MarkSeen(ctx context.Context, userID ids.UserID, channelID ids.ChannelID) error {
	seenAt := s.clock().Unix()
	marker := Marker{
		UserID:      userID.Int64(),
		ChannelID:   channelID.Int64(),
		LastSeenSec: &seenAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "channel_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_seen_s"}),
		}).
		Create(&marker).Error
}

// SeedMarker inserts a marker with no timestamp, used when a channel is
// created so the creator does not see a false unread count. It runs on the
// caller's transaction handle.
func (s *Service) SeedMarker(tx *gorm.DB, userID ids.UserID, channelID ids.ChannelID) error {
	marker := Marker{
		UserID:    userID.Int64(),
		ChannelID: channelID.Int64(),
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker).Error
}

type unreadRow struct {
	ChannelID    int64 `gorm:"column:channel_id"`
	MessageCount int64 `gorm:"column:message_count"`
}

// Counts returns, for each channel, the number of top-level messages by other
// users posted strictly after the requester's last-seen time. Replies never
// count toward the total. Channels with no qualifying messages are omitted.
func (s *Service) Counts(ctx context.Context, userID ids.UserID) (map[ids.ChannelID]int64, error) {
	const query = `
		SELECT m.channel_id AS channel_id, COUNT(*) AS message_count
		FROM messages AS m
		LEFT JOIN unread AS u
			ON u.channel_id = m.channel_id AND u.user_id = ?
		WHERE m.user_id != ?
			AND m.replied_to IS NULL
			AND m.posted_at_s > COALESCE(u.last_seen_s, ?)
		GROUP BY m.channel_id`

	var rows []unreadRow
	err := s.db.WithContext(ctx).
		Raw(query, userID.Int64(), userID.Int64(), neverSeenSentinel).
		Scan(&rows).Error
	if err != nil {
		s.logger.Error("unread count query failed", zap.Error(err), zap.Int64("user_id", userID.Int64()))
		return nil, err
	}

	counts := make(map[ids.ChannelID]int64, len(rows))
	for _, row := range rows {
		channelID, err := ids.NewChannelID(row.ChannelID)
		if err != nil {
			return nil, err
		}
		counts[channelID] = row.MessageCount
	}
	return counts, nil
}
