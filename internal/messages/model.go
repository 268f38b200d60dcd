package messages

// Message models one ledger row. RepliedTo is NULL for a top-level message and
// carries the parent message id for a reply; threading is one level deep.
type Message struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64  `gorm:"column:user_id;not null;index"`
	ChannelID   int64  `gorm:"column:channel_id;not null;index:idx_messages_channel_posted,priority:1"`
	Body        string `gorm:"column:body;type:text;not null"`
	PostedAtSec int64  `gorm:"column:posted_at_s;not null;index:idx_messages_channel_posted,priority:2"`
	RepliedTo   *int64 `gorm:"column:replied_to;index"`
}

// TableName provides the explicit table binding for GORM.
func (Message) TableName() string {
	return "messages"
}

// ChannelMessage is a top-level message as listed for a channel, joined with
// its author name and annotated with its reply count.
type ChannelMessage struct {
	Username   string `json:"username"`
	Body       string `json:"body"`
	ReplyCount int64  `json:"replies_count"`
}

// Reply is one threaded reply joined with its author name.
type Reply struct {
	Username string `json:"username"`
	Body     string `json:"body"`
}
