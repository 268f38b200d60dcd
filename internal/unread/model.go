package unread

// Marker records the last time a user viewed a channel. A NULL last_seen_s
// means the channel has never been viewed; unread counts fall back to a
// far-past sentinel in that case.
type Marker struct {
	UserID      int64  `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	ChannelID   int64  `gorm:"column:channel_id;primaryKey;autoIncrement:false"`
	LastSeenSec *int64 `gorm:"column:last_seen_s"`
}

// TableName provides the explicit table binding for GORM.
func (Marker) TableName() string {
	return "unread"
}
