package repository_test_test

import (
	"testing"
	"time"

	"attendance_ms/domain"
	"attendance_ms/repository/command_repository"
	"attendance_ms/repository/repository_test"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOpenRecord() *domain.AttendanceRecord {
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	return &domain.AttendanceRecord{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		CheckInTime:        now,
		CheckInDate:        domain.Day(now, time.UTC),
		LocationLatitude:   34.05,
		LocationLongitude:  -118.24,
		VerificationMethod: domain.VerificationBiometric,
	}
}

func TestInsertIfNoOpenSession_Inserted(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "attendance_records" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := command_repository.NewAttendanceCommandRepository()
	ok, err := repo.InsertIfNoOpenSession(conn, newOpenRecord())

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIfNoOpenSession_ConflictWithOpenSession(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "attendance_records" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	repo := command_repository.NewAttendanceCommandRepository()
	ok, err := repo.InsertIfNoOpenSession(conn, newOpenRecord())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseOpenSession_AlreadyClosed(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE "attendance_records" SET .* WHERE \(?id = \$\d+ AND user_id = \$\d+ AND check_out_time IS NULL .* RETURNING \*`).
		WillReturnRows(sqlmock.NewRows(attendanceColumns))
	mock.ExpectCommit()

	repo := command_repository.NewAttendanceCommandRepository()
	rec, err := repo.CloseOpenSession(conn, uuid.New(), uuid.New(), time.Now(), domain.Location{}, "")

	assert.Nil(t, rec)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseOpenSession_Closed(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)
	id, userID := uuid.New(), uuid.New()
	in := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	out := in.Add(9 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE "attendance_records" SET .*"check_out_time"=.* RETURNING \*`).
		WillReturnRows(sqlmock.NewRows(attendanceColumns).
			AddRow(id.String(), userID.String(), in, domain.Day(in, time.UTC), out, 34.05, -118.24))
	mock.ExpectCommit()

	repo := command_repository.NewAttendanceCommandRepository()
	rec, err := repo.CloseOpenSession(conn, id, userID, out, domain.Location{Latitude: 34.05, Longitude: -118.24}, "done")

	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, in, rec.CheckInTime)
	require.NotNil(t, rec.CheckOutTime)
	assert.Equal(t, out, *rec.CheckOutTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}
