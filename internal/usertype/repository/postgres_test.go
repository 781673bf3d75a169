package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"storefront-auth/backend/internal/usertype/domain"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

func buyer(now time.Time) *domain.UserType {
	return &domain.UserType{ID: "ut-1", Name: "Buyer", CreatedAt: now, UpdatedAt: now}
}

func TestInsert_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`(?s)^INSERT INTO user_types .+ ON CONFLICT DO NOTHING$`).
		WithArgs("ut-1", "Buyer", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Insert(context.Background(), buyer(now)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
}

func TestInsert_Duplicate(t *testing.T) {
	tests := []struct {
		name   string
		expect func(sqlmock.Sqlmock)
	}{
		{"skipped row", func(m sqlmock.Sqlmock) {
			m.ExpectExec(`INSERT INTO user_types`).WillReturnResult(sqlmock.NewResult(0, 0))
		}},
		{"unique violation", func(m sqlmock.Sqlmock) {
			m.ExpectExec(`INSERT INTO user_types`).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "user_types_name_key"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			tt.expect(mock)
			if err := repo.Insert(context.Background(), buyer(time.Now().UTC())); !errors.Is(err, ErrDuplicateName) {
				t.Errorf("Insert = %v, want ErrDuplicateName", err)
			}
		})
	}
}

func TestInsert_OtherError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`INSERT INTO user_types`).WillReturnError(&pgconn.PgError{Code: "23514"})

	err := repo.Insert(context.Background(), buyer(time.Now().UTC()))
	if err == nil || errors.Is(err, ErrDuplicateName) {
		t.Errorf("Insert = %v, want non-duplicate error", err)
	}
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`^SELECT id, name, created_at, updated_at FROM user_types ORDER BY created_at, name$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow("ut-1", "Buyer", now, now).
			AddRow("ut-2", "Seller", now.Add(time.Second), now.Add(time.Second)))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Buyer" || got[1].ID != "ut-2" {
		t.Fatalf("List = %+v", got)
	}
}

func TestList_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM user_types`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}))

	got, err := repo.List(context.Background())
	if err != nil || len(got) != 0 {
		t.Errorf("List = %+v, %v; want empty", got, err)
	}
}

func TestList_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM user_types`).WillReturnError(errors.New("db down"))

	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("List should return the database error")
	}
}
