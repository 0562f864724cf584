package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestClassRepositoryDeleteCascadeOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE lecture_id IN (SELECT id FROM lectures WHERE class_id = $1)")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lectures WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 15))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM classes WHERE id = $1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteCascade(context.Background(), "class-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryClearTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("UPDATE classes SET teacher_id = NULL").
		WithArgs("teacher-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.ClearTeacher(context.Background(), "teacher-1")
	require.NoError(t, err)
	require.EqualValues(t, 2, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryClearTeacherRowCountError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("UPDATE classes SET teacher_id = NULL").
		WithArgs("teacher-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("driver does not report rows")))

	_, err := repo.ClearTeacher(context.Background(), "teacher-1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListSickLeaveFiles(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"sick_leave_file"}).
		AddRow("ref-1.pdf").
		AddRow("ref-2.pdf")
	mock.ExpectQuery("SELECT a.sick_leave_file FROM attendance a").
		WithArgs("class-1").
		WillReturnRows(rows)

	files, err := repo.ListSickLeaveFiles(context.Background(), "class-1")
	require.NoError(t, err)
	require.Equal(t, []string{"ref-1.pdf", "ref-2.pdf"}, files)
	require.NoError(t, mock.ExpectationsWereMet())
}
