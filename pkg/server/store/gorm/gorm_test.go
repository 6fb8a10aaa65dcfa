package gorm

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jinbot/jinbot/pkg/server/store"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return gormDB, mock
}

func TestLoadLikes(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewLikesStore(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "filename", "reaction", "created_at"}).
		AddRow(1, "cat.jpg", "heart", now).
		AddRow(2, "dog.png", "haha", now).
		AddRow(3, "cat.jpg", "love", now)
	mock.ExpectQuery(`SELECT \* FROM "likes"`).WillReturnRows(rows)

	likes, err := s.LoadLikes()
	require.NoError(t, err)
	assert.Equal(t, []string{"heart", "love"}, likes["cat.jpg"])
	assert.Equal(t, []string{"haha"}, likes["dog.png"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendLike(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewLikesStore(db)

	mock.ExpectExec(`INSERT INTO likes`).
		WithArgs("cat.jpg", "heart").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.AppendLike("cat.jpg", "heart"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadGroupID(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGroupStore(db)

	rows := sqlmock.NewRows([]string{"key", "value"}).AddRow("group_id", "-100123")
	mock.ExpectQuery(`SELECT \* FROM "settings"`).WillReturnRows(rows)

	id, err := s.LoadGroupID()
	require.NoError(t, err)
	assert.Equal(t, int64(-100123), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadGroupIDNotSet(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGroupStore(db)

	mock.ExpectQuery(`SELECT \* FROM "settings"`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}))

	_, err := s.LoadGroupID()
	assert.ErrorIs(t, err, store.ErrGroupNotSet)
}

func TestSaveGroupID(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewGroupStore(db)

	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs("group_id", "-100123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SaveGroupID(-100123))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckConnectivity(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	db, err := gorm.Open(
		postgres.New(postgres.Config{Conn: mockDB, PreferSimpleProtocol: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent), DisableAutomaticPing: true},
	)
	require.NoError(t, err)
	s := NewStateStore(db)

	assert.NoError(t, s.CheckConnectivity())
	assert.EqualError(t, s.CheckConnectivity(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
