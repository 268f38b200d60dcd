package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/belaychat/belay/backend/internal/channels"
	"github.com/belaychat/belay/backend/internal/database"
	"github.com/belaychat/belay/backend/internal/messages"
	"github.com/belaychat/belay/backend/internal/reactions"
	"github.com/belaychat/belay/backend/internal/unread"
	"github.com/belaychat/belay/backend/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// testClock is a settable clock shared by the services under test.
type testClock struct {
	now time.Time
}

func (c *testClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestHandler(t *testing.T) (http.Handler, *testClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	databasePath := filepath.Join(t.TempDir(), "server.db")
	db, err := database.OpenSQLite(databasePath, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	clock := &testClock{now: time.Unix(1700000000, 0)}
	tick := func() time.Time { return clock.now }

	usersService, err := users.NewService(users.ServiceConfig{Database: db, BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("failed to create users service: %v", err)
	}
	unreadService, err := unread.NewService(unread.ServiceConfig{Database: db, Clock: tick})
	if err != nil {
		t.Fatalf("failed to create unread service: %v", err)
	}
	channelsService, err := channels.NewService(channels.ServiceConfig{Database: db, MarkerSeeder: unreadService})
	if err != nil {
		t.Fatalf("failed to create channels service: %v", err)
	}
	messagesService, err := messages.NewService(messages.ServiceConfig{Database: db, Clock: tick})
	if err != nil {
		t.Fatalf("failed to create messages service: %v", err)
	}
	reactionsService, err := reactions.NewService(reactions.ServiceConfig{Database: db, Users: usersService})
	if err != nil {
		t.Fatalf("failed to create reactions service: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		Users:     usersService,
		Channels:  channelsService,
		Messages:  messagesService,
		Unread:    unreadService,
		Reactions: reactionsService,
	})
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	return handler, clock
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reader).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	request := httptest.NewRequest(method, path, &reader)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", token)
	}
	for name, value := range headers {
		request.Header.Set(name, value)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
}

func signupToken(t *testing.T, handler http.Handler) string {
	t.Helper()
	recorder := doJSON(t, handler, http.MethodPost, "/api/signup", "", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("signup failed with status %d", recorder.Code)
	}
	var payload struct {
		APIKey string `json:"api_key"`
	}
	decodeBody(t, recorder, &payload)
	if payload.APIKey == "" {
		t.Fatalf("signup returned no api key")
	}
	return payload.APIKey
}
