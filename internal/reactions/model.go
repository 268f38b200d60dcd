package reactions

// Reaction records one user's emoji reaction to one message. The composite
// unique index makes repeated adds of the same triple a no-op at the storage
// layer; multiplicities are derived by counting rows.
type Reaction struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64  `gorm:"column:user_id;not null;uniqueIndex:idx_reactions_user_message_emoji,priority:1"`
	MessageID int64  `gorm:"column:message_id;not null;uniqueIndex:idx_reactions_user_message_emoji,priority:2"`
	Emoji     string `gorm:"column:emoji;size:32;not null;uniqueIndex:idx_reactions_user_message_emoji,priority:3"`
}

// TableName provides the explicit table binding for GORM.
func (Reaction) TableName() string {
	return "reactions"
}
