package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/atinyakov/AccountKeeper/internal/client/storage"
)

var _ storage.Slot = (*PostgresSlotRepository)(nil)

func setupMock(t *testing.T) (*PostgresSlotRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresSlotRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func TestGet_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM account_slots WHERE key = $1`)).
		WithArgs("accounts").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	got, err := repo.Get("accounts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("expected [], got %q", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGet_Missing(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM account_slots WHERE key = $1`)).
		WithArgs("accounts").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	got, err := repo.Get("accounts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil value for missing key, got %q", got)
	}
}

func TestGet_Error(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM account_slots`)).
		WithArgs("accounts").
		WillReturnError(errors.New("query fail"))

	_, err := repo.Get("accounts")
	if err == nil || !regexp.MustCompile(`get slot accounts`).MatchString(err.Error()) {
		t.Errorf("expected get slot error, got %v", err)
	}
}

func TestSet_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO account_slots (key, value, updated_at)`)).
		WithArgs("accounts", []byte(`[{"id":"a"}]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Set("accounts", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSet_Error(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	wantErr := errors.New("disk full")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO account_slots`)).
		WithArgs("accounts", []byte{}).
		WillReturnError(wantErr)

	err := repo.Set("accounts", nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped %v, got %v", wantErr, err)
	}
}

func TestGetContext_Canceled(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM account_slots`)).
		WithArgs("accounts").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	if _, err := repo.GetContext(ctx, "accounts"); err == nil {
		t.Error("expected error for canceled context")
	}
}
