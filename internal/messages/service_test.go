package messages

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/belaychat/belay/backend/internal/ids"
	"github.com/belaychat/belay/backend/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, clock func() time.Time) (*Service, *gorm.DB) {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "messages.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Message{}, &users.User{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	service, err := NewService(ServiceConfig{Database: db, Clock: clock})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service, db
}

func plantUser(t *testing.T, db *gorm.DB, name string) ids.UserID {
	t.Helper()
	account := users.User{Name: name, PasswordHash: "x", APIKey: name + "-key"}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("failed to plant user %q: %v", name, err)
	}
	userID, err := ids.NewUserID(account.ID)
	if err != nil {
		t.Fatalf("unexpected user id error: %v", err)
	}
	return userID
}

func mustChannelID(t *testing.T, value int64) ids.ChannelID {
	t.Helper()
	id, err := ids.NewChannelID(value)
	if err != nil {
		t.Fatalf("unexpected channel id error: %v", err)
	}
	return id
}

func TestPostAssignsServerTimestamp(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	service, db := newTestService(t, func() time.Time { return fixed })
	author := plantUser(t, db, "alice")
	channel := mustChannelID(t, 1)

	if err := service.Post(context.Background(), author, channel, "hello"); err != nil {
		t.Fatalf("post failed: %v", err)
	}

	var stored Message
	if err := db.Take(&stored).Error; err != nil {
		t.Fatalf("failed to load stored message: %v", err)
	}
	if stored.PostedAtSec != fixed.Unix() {
		t.Fatalf("expected posted_at %d, got %d", fixed.Unix(), stored.PostedAtSec)
	}
	if stored.RepliedTo != nil {
		t.Fatalf("top-level message must have no reply parent")
	}
}

func TestListChannelMessagesExcludesReplies(t *testing.T) {
	service, db := newTestService(t, nil)
	alice := plantUser(t, db, "alice")
	bob := plantUser(t, db, "bob")
	channel := mustChannelID(t, 1)

	if err := service.Post(context.Background(), alice, channel, "top"); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	var parent Message
	if err := db.Where("body = ?", "top").Take(&parent).Error; err != nil {
		t.Fatalf("failed to load parent: %v", err)
	}
	parentID, err := ids.NewMessageID(parent.ID)
	if err != nil {
		t.Fatalf("unexpected message id error: %v", err)
	}
	if err := service.PostReply(context.Background(), bob, channel, parentID, "hi"); err != nil {
		t.Fatalf("reply failed: %v", err)
	}

	listing, err := service.ListChannelMessages(context.Background(), channel)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listing) != 1 {
		t.Fatalf("expected only the top-level message, got %d entries", len(listing))
	}
	entry, ok := listing[parentID]
	if !ok {
		t.Fatalf("expected listing for message %s, got %v", parentID, listing)
	}
	if entry.Username != "alice" {
		t.Fatalf("expected author name alice, got %q", entry.Username)
	}
	if entry.Body != "top" {
		t.Fatalf("unexpected body %q", entry.Body)
	}
	if entry.ReplyCount != 1 {
		t.Fatalf("expected reply count 1, got %d", entry.ReplyCount)
	}
}

func TestReplyCountScopedToChannel(t *testing.T) {
	service, db := newTestService(t, nil)
	alice := plantUser(t, db, "alice")
	channelOne := mustChannelID(t, 1)
	channelTwo := mustChannelID(t, 2)

	if err := service.Post(context.Background(), alice, channelOne, "top"); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	var parent Message
	if err := db.Where("body = ?", "top").Take(&parent).Error; err != nil {
		t.Fatalf("failed to load parent: %v", err)
	}
	parentID, err := ids.NewMessageID(parent.ID)
	if err != nil {
		t.Fatalf("unexpected message id error: %v", err)
	}

	// A stray reply pointing at the parent from another channel must not
	// inflate the count.
	if err := service.PostReply(context.Background(), alice, channelTwo, parentID, "stray"); err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if err := service.PostReply(context.Background(), alice, channelOne, parentID, "on-topic"); err != nil {
		t.Fatalf("reply failed: %v", err)
	}

	listing, err := service.ListChannelMessages(context.Background(), channelOne)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if listing[parentID].ReplyCount != 1 {
		t.Fatalf("expected same-channel reply count 1, got %d", listing[parentID].ReplyCount)
	}
}

func TestListRepliesFiltersByParentAndChannel(t *testing.T) {
	service, db := newTestService(t, nil)
	alice := plantUser(t, db, "alice")
	bob := plantUser(t, db, "bob")
	channel := mustChannelID(t, 1)

	if err := service.Post(context.Background(), alice, channel, "first"); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if err := service.Post(context.Background(), alice, channel, "second"); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	var first, second Message
	if err := db.Where("body = ?", "first").Take(&first).Error; err != nil {
		t.Fatalf("failed to load first: %v", err)
	}
	if err := db.Where("body = ?", "second").Take(&second).Error; err != nil {
		t.Fatalf("failed to load second: %v", err)
	}
	firstID, err := ids.NewMessageID(first.ID)
	if err != nil {
		t.Fatalf("unexpected message id error: %v", err)
	}
	secondID, err := ids.NewMessageID(second.ID)
	if err != nil {
		t.Fatalf("unexpected message id error: %v", err)
	}

	if err := service.PostReply(context.Background(), bob, channel, firstID, "to first"); err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if err := service.PostReply(context.Background(), bob, channel, secondID, "to second"); err != nil {
		t.Fatalf("reply failed: %v", err)
	}

	replies, err := service.ListReplies(context.Background(), firstID, channel)
	if err != nil {
		t.Fatalf("list replies failed: %v", err)
	}
	if len(replies) != 1 {
		t.Fatalf("expected one reply, got %d", len(replies))
	}
	for _, reply := range replies {
		if reply.Body != "to first" {
			t.Fatalf("reply for a different parent leaked in: %q", reply.Body)
		}
		if reply.Username != "bob" {
			t.Fatalf("expected author name bob, got %q", reply.Username)
		}
	}
}

func TestListChannelMessagesEmptyChannel(t *testing.T) {
	service, _ := newTestService(t, nil)

	listing, err := service.ListChannelMessages(context.Background(), mustChannelID(t, 42))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listing) != 0 {
		t.Fatalf("expected empty listing, got %d entries", len(listing))
	}
}
