package users

// User captures a stored account: a mutable display name, a bcrypt password
// hash and the immutable api key acting as the bearer credential.
type User struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string `gorm:"column:name;size:190;not null;index"`
	PasswordHash string `gorm:"column:password_hash;size:190;not null"`
	APIKey       string `gorm:"column:api_key;size:40;not null;uniqueIndex"`
}

// TableName provides the explicit table binding for GORM.
func (User) TableName() string {
	return "users"
}
