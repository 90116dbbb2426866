package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"profilehub/internal/model"
)

func newGormMock(t *testing.T) (*GormUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormUserRepository(db), mock
}

func TestGormUserRepository_CreateAssignsID(t *testing.T) {
	repo, mock := newGormMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &model.User{Name: "John", Email: "john@x.com", PasswordHash: "h", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Len(t, user.ID, 36)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_CreateDuplicateEmail(t *testing.T) {
	repo, mock := newGormMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'john@x.com' for key 'idx_users_email'"})

	err := repo.Create(context.Background(), &model.User{Name: "John", Email: "john@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_GetByEmailNotFound(t *testing.T) {
	repo, mock := newGormMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE email = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	user, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGormUserRepository_SearchBuildsEscapedLikeFilters(t *testing.T) {
	repo, mock := newGormMock(t)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password", "tech_stack", "bio"}).
		AddRow("u1", "John", "john@x.com", "hash", `["JavaScript","Python"]`, "prompt engineer")

	mock.ExpectQuery(`LOWER\(name\) LIKE \? AND EXISTS \(SELECT 1 FROM JSON_TABLE\(tech_stack, '\$\[\*\]'.*WHERE LOWER\(jt\.v\) LIKE \?\).*ORDER BY created_at ASC`).
		WithArgs(`%jo\%n%`, "%python%").
		WillReturnRows(rows)

	users, err := repo.Search(context.Background(), SearchFilter{Name: "Jo%n", TechStack: " Python "})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []string{"JavaScript", "Python"}, users[0].TechStack)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_SearchTechStackMatchesDecodedElements(t *testing.T) {
	repo, mock := newGormMock(t)

	rows := sqlmock.NewRows([]string{"id", "name", "tech_stack"}).
		AddRow("u1", "John", `["R\u0026D","Go"]`)

	// The term is bound as a plain LIKE pattern against each unpacked element,
	// never against the JSON text with its quotes and escapes.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE " + techStackElementMatch)).
		WithArgs("%r&d%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE " + techStackElementMatch)).
		WithArgs(`%o","p%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	users, err := repo.Search(context.Background(), SearchFilter{TechStack: "R&D"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []string{"R&D", "Go"}, users[0].TechStack)

	users, err = repo.Search(context.Background(), SearchFilter{TechStack: `o","p`})
	require.NoError(t, err)
	assert.Empty(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_UpdateProfile(t *testing.T) {
	repo, mock := newGormMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "bio"}).AddRow("u1", "John", "john@x.com", "old"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	bio := "new"
	user, err := repo.UpdateProfile(context.Background(), "u1", model.ProfilePatch{Bio: &bio})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "new", user.Bio)
	assert.Equal(t, "John", user.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_UpdateProfileRowDeletedMeanwhile(t *testing.T) {
	repo, mock := newGormMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow("u1", "John", "john@x.com"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	bio := "new"
	user, err := repo.UpdateProfile(context.Background(), "u1", model.ProfilePatch{Bio: &bio})
	require.NoError(t, err)
	assert.Nil(t, user)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_SearchWithoutFilters(t *testing.T) {
	repo, mock := newGormMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` ORDER BY created_at ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("u1", "John").AddRow("u2", "Ann"))

	users, err := repo.Search(context.Background(), SearchFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_Delete(t *testing.T) {
	repo, mock := newGormMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `users` WHERE id = ?")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `users` WHERE id = ?")).
		WithArgs("u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePattern(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "%john%", likePattern("John"))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}
