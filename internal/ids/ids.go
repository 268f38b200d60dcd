// Package ids provides validated identifier types shared across the chat
// domain packages, keeping user, channel and message ids from being mixed up
// at call sites.
package ids

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidUserID indicates that a user identifier is not a positive integer.
	ErrInvalidUserID = errors.New("ids: invalid user id")
	// ErrInvalidChannelID indicates that a channel identifier is not a positive integer.
	ErrInvalidChannelID = errors.New("ids: invalid channel id")
	// ErrInvalidMessageID indicates that a message identifier is not a positive integer.
	ErrInvalidMessageID = errors.New("ids: invalid message id")
)

// UserID represents a validated user identifier.
type UserID int64

// NewUserID validates the raw value and returns a UserID.
func NewUserID(value int64) (UserID, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidUserID, value)
	}
	return UserID(value), nil
}

// Int64 exposes the raw identifier value.
func (id UserID) Int64() int64 {
	return int64(id)
}

// String renders the identifier as a decimal string.
func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ChannelID represents a validated channel identifier.
type ChannelID int64

// NewChannelID validates the raw value and returns a ChannelID.
func NewChannelID(value int64) (ChannelID, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannelID, value)
	}
	return ChannelID(value), nil
}

// Int64 exposes the raw identifier value.
func (id ChannelID) Int64() int64 {
	return int64(id)
}

// String renders the identifier as a decimal string.
func (id ChannelID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// MessageID represents a validated message identifier.
type MessageID int64

// NewMessageID validates the raw value and returns a MessageID.
func NewMessageID(value int64) (MessageID, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMessageID, value)
	}
	return MessageID(value), nil
}

// Int64 exposes the raw identifier value.
func (id MessageID) Int64() int64 {
	return int64(id)
}

// String renders the identifier as a decimal string.
func (id MessageID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseUserID converts a decimal string into a validated UserID.
func ParseUserID(raw string) (UserID, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUserID, raw)
	}
	return NewUserID(value)
}

// ParseChannelID converts a decimal string into a validated ChannelID.
func ParseChannelID(raw string) (ChannelID, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChannelID, raw)
	}
	return NewChannelID(value)
}

// ParseMessageID converts a decimal string into a validated MessageID.
func ParseMessageID(raw string) (MessageID, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMessageID, raw)
	}
	return NewMessageID(value)
}
