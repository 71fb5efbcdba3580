package auth_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/EmpoweredVote/constituency-core/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSessionInfo(t *testing.T) (auth.SessionInfo, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return auth.SessionInfo{DB: gdb}, mock
}

func TestFindSessionByID(t *testing.T) {
	si, mock := newSessionInfo(t)
	expires := time.Now().Add(time.Hour).UTC()

	mock.ExpectQuery(`FROM "app_auth"."sessions" WHERE session_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "user_id", "expires_at"}).
			AddRow("sess-1", "user-1", expires))

	sd, err := si.FindSessionByID("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", sd.UserID)
	assert.True(t, sd.ExpiresAt.Equal(expires))
}

func TestFindSessionByID_Missing(t *testing.T) {
	si, mock := newSessionInfo(t)

	mock.ExpectQuery(`FROM "app_auth"."sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "user_id", "expires_at"}))

	_, err := si.FindSessionByID("nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindUserRole(t *testing.T) {
	si, mock := newSessionInfo(t)

	mock.ExpectQuery(`SELECT "user_id","role" FROM "app_auth"."users" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role"}).AddRow("user-1", "admin"))

	role, err := si.FindUserRole("user-1")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}
