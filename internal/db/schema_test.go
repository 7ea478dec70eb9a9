package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMigrateCreatesOnlyMissingTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	for _, tbl := range schema {
		q := mock.ExpectQuery("information_schema\\.tables").WithArgs(tbl.name)
		if tbl.name == "users" || tbl.name == "cars" {
			q.WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow(tbl.name))
			continue
		}
		q.WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + tbl.name).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	created, err := Migrate(context.Background(), conn)
	if err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	if len(created) != 3 || created[0] != "bookings" || created[2] != "user_cards" {
		t.Fatalf("unexpected created tables: %v", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrateStopsOnError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("denied"))

	created, err := Migrate(context.Background(), conn)
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(created) != 0 {
		t.Fatalf("nothing should be reported as created, got %v", created)
	}
}
