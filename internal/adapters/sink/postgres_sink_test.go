package sink

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/maorga/beacon/internal/domain"
)

func TestPostgresSinkDeliver(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewPostgresSink(db, "events", "client-1")
	ts := time.Now()

	expectedQuery := regexp.QuoteMeta("INSERT INTO events (client_id, name, params, ts) VALUES ($1,$2,$3,$4)")
	mock.ExpectExec(expectedQuery).
		WithArgs("client-1", "ctrl_locked", sqlmock.AnyArg(), ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	e := domain.NewEvent("ctrl_locked", map[string]any{"method": "hotkey"}, ts)
	if err := s.Deliver(context.Background(), e); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSinkName(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	s := NewPostgresSink(db, "events", "client-1")
	if s.Name() != "postgres" {
		t.Fatalf("expected sink name postgres, got %s", s.Name())
	}
}
