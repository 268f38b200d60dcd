package channels

import (
	"context"
	"fmt"

	"github.com/belaychat/belay/backend/internal/ids"
	"github.com/belaychat/belay/backend/internal/random"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	namePrefix    = "Unnamed Channel "
	nameSuffixLen = 6
)

// MarkerSeeder creates an empty unread marker for a freshly created channel
// on the supplied transaction handle.
type MarkerSeeder interface {
	SeedMarker(tx *gorm.DB, userID ids.UserID, channelID ids.ChannelID) error
}

// ServiceConfig describes the dependencies required by the channel registry.
type ServiceConfig struct {
	Database     *gorm.DB
	MarkerSeeder MarkerSeeder
	Logger       *zap.Logger
}

// Service manages channel creation, listing and renames.
type Service struct {
	db     *gorm.DB
	seeder MarkerSeeder
	logger *zap.Logger
}

// NewService constructs the channel registry service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("channels: database connection required")
	}
	if cfg.MarkerSeeder == nil {
		return nil, fmt.Errorf("channels: marker seeder required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     cfg.Database,
		seeder: cfg.MarkerSeeder,
		logger: logger,
	}, nil
}

// Create inserts a channel with a generated placeholder name and seeds an
// unread marker for the creator in the same transaction, so the creator does
// not see a false unread count on a channel nobody has posted to.
func (s *Service) Create(ctx context.Context, creator ids.UserID) (ids.ChannelID, string, error) {
	name, err := placeholderName()
	if err != nil {
		return 0, "", err
	}

	channel := Channel{Name: name}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&channel).Error; err != nil {
			return err
		}
		channelID, err := ids.NewChannelID(channel.ID)
		if err != nil {
			return err
		}
		return s.seeder.SeedMarker(tx, creator, channelID)
	})
	if txErr != nil {
		s.logger.Error("channel create failed", zap.Error(txErr))
		return 0, "", txErr
	}

	channelID, err := ids.NewChannelID(channel.ID)
	if err != nil {
		return 0, "", err
	}
	s.logger.Info("channel created", zap.Int64("channel_id", channel.ID))
	return channelID, name, nil
}

// List returns every channel keyed by id. The map is empty when no channels
// exist.
func (s *Service) List(ctx context.Context) (map[ids.ChannelID]string, error) {
	var rows []Channel
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	listing := make(map[ids.ChannelID]string, len(rows))
	for _, row := range rows {
		channelID, err := ids.NewChannelID(row.ID)
		if err != nil {
			return nil, err
		}
		listing[channelID] = row.Name
	}
	return listing, nil
}

// Rename overwrites the channel name. An absent id is a silent no-op.
func (s *Service) Rename(ctx context.Context, channelID ids.ChannelID, newName string) error {
	return s.db.WithContext(ctx).
		Model(&Channel{}).
		Where("id = ?", channelID.Int64()).
		Update("name", newName).Error
}

func placeholderName() (string, error) {
	suffix, err := random.String(random.Digits, nameSuffixLen)
	if err != nil {
		return "", err
	}
	return namePrefix + suffix, nil
}
