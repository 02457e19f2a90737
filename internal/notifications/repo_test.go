package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title_en TEXT NOT NULL,
  title_ar TEXT NOT NULL,
  message_en TEXT NOT NULL,
  message_ar TEXT NOT NULL,
  link TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM notifications").Error)
	return db
}

func seedNotification(t *testing.T, repo Repository, userID uuid.UUID, createdAt time.Time) *models.Notification {
	t.Helper()

	text := copyFor(enums.NotificationTypeContractSigned)
	notification := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeContractSigned,
		TitleEn:   text.TitleEn,
		TitleAr:   text.TitleAr,
		MessageEn: text.MessageEn,
		MessageAr: text.MessageAr,
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), notification))
	return notification
}

func TestListFiltersUnreadAndPaginates(t *testing.T) {
	repo := NewRepository(setupNotificationsTestDB(t))
	userID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	var seeded []*models.Notification
	for i := 0; i < 3; i++ {
		seeded = append(seeded, seedNotification(t, repo, userID, base.Add(time.Duration(i)*time.Minute)))
	}
	seedNotification(t, repo, uuid.New(), base)

	_, err := repo.MarkRead(context.Background(), userID, seeded[0].ID, time.Now().UTC())
	require.NoError(t, err)

	unread, next, err := repo.List(context.Background(), listNotificationsParams{UserID: userID, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Nil(t, next)

	firstPage, cursor, err := repo.List(context.Background(), listNotificationsParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.NotNil(t, cursor)
	assert.Equal(t, seeded[2].ID, firstPage[0].ID, "newest first")

	secondPage, last, err := repo.List(context.Background(), listNotificationsParams{UserID: userID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, secondPage, 1)
	assert.Nil(t, last)
	assert.NotEqual(t, firstPage[0].ID, secondPage[0].ID)
	assert.NotEqual(t, firstPage[1].ID, secondPage[0].ID)
}

func TestMarkReadScopesToOwner(t *testing.T) {
	repo := NewRepository(setupNotificationsTestDB(t))
	userID := uuid.New()
	notification := seedNotification(t, repo, userID, time.Now().UTC())

	result, err := repo.MarkRead(context.Background(), uuid.New(), notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, result.Found, "other users must not see the row")

	result, err = repo.MarkRead(context.Background(), userID, notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.True(t, result.Updated)

	// Second read is a no-op but still resolves.
	result, err = repo.MarkRead(context.Background(), userID, notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.False(t, result.Updated)
}

func TestMarkAllReadCountsOnlyUnread(t *testing.T) {
	repo := NewRepository(setupNotificationsTestDB(t))
	userID := uuid.New()

	first := seedNotification(t, repo, userID, time.Now().UTC())
	seedNotification(t, repo, userID, time.Now().UTC())
	_, err := repo.MarkRead(context.Background(), userID, first.ID, time.Now().UTC())
	require.NoError(t, err)

	count, err := repo.MarkAllRead(context.Background(), userID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.MarkAllRead(context.Background(), userID, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, count)
}
