package channels

// Channel models a named message room. Channels are created with a generated
// placeholder name and are never deleted.
type Channel struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;size:190;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Channel) TableName() string {
	return "channels"
}
