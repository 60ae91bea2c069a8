package auth_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"carnival-tracker/internal/auth"
	"carnival-tracker/internal/models"
)

func TestRedisStoreCreate(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := auth.NewRedisStore(client, 6*time.Hour)

	mock.Regexp().ExpectSet(`session:.+`, `.+`, 6*time.Hour).SetVal("OK")

	sess, err := store.Create(context.Background(), "desk1", models.RoleDesk)
	assert.NoError(t, err)
	assert.Equal(t, "desk1", sess.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreGetRefreshesTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := auth.NewRedisStore(client, 6*time.Hour)

	stored, _ := json.Marshal(&auth.Session{
		ID:        "abc",
		Username:  "desk1",
		Role:      models.RoleDesk,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	mock.ExpectGet("session:abc").SetVal(string(stored))
	mock.Regexp().ExpectSet("session:abc", `.+`, 6*time.Hour).SetVal("OK")

	sess, err := store.Get(context.Background(), "abc")
	assert.NoError(t, err)
	assert.Equal(t, "desk1", sess.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreGetMissing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := auth.NewRedisStore(client, 6*time.Hour)

	mock.ExpectGet("session:missing").RedisNil()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := auth.NewRedisStore(client, 6*time.Hour)

	mock.ExpectDel("session:abc").SetVal(1)

	assert.NoError(t, store.Delete(context.Background(), "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
