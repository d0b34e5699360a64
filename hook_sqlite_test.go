package sift

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "modernc.org/sqlite"
)

func TestHookSqliteConst(t *testing.T) {
	var expect string
	var got string

	expect = "insert into stages (id, session_id, occurred_at, stage, verdict, skipped, reason, elapse) values (?, ?, ?, ?, ?, ?, ?, ?)"
	got = sqliteStageQuery
	if got != expect {
		t.Errorf("expected %s, got %s", expect, got)
	}

	expect = "insert into verdicts (id, occurred_at, mail_from, client_ip, auth_user, subject, message_id, verdict, reason, elapse) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	got = sqliteVerdictQuery
	if got != expect {
		t.Errorf("expected %s, got %s", expect, got)
	}
}

func TestHookSqliteName(t *testing.T) {
	sqlite := &HookSqlite{}
	expect := "sqlite"
	got := sqlite.Name()
	if got != expect {
		t.Errorf("expected %s, got %s", expect, got)
	}
}

func TestHookSqliteConn(t *testing.T) {
	expectError := "missing dsn for sqlite, please set `DSN`"
	sqlite := &HookSqlite{}
	_, err := sqlite.conn()

	if err != nil && fmt.Sprintf("%s", err) != expectError {
		t.Errorf("expected %s, got %s", expectError, err)
	}
}

func TestHookSqliteAfterInit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectExec("create table if not exists stages").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("create table if not exists verdicts").WillReturnResult(sqlmock.NewResult(0, 0))

	sqlite := &HookSqlite{pool: db}
	sqlite.AfterInit()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}

func TestHookSqliteAfterStage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	ti := time.Date(2023, time.August, 16, 14, 48, 0, 0, time.UTC)

	mock.ExpectExec("insert into stages").WithArgs(
		AnyID{},
		"abcdefg",
		ti.Format(TimeFormat),
		"antivirus",
		"reject-permanent",
		false,
		"virus detected",
		7,
	).WillReturnResult(sqlmock.NewResult(1, 1))

	data := &AfterStageData{
		SessionID:  "abcdefg",
		OccurredAt: ti,
		Stage:      "antivirus",
		Verdict:    "reject-permanent",
		Skipped:    false,
		Reason:     "virus detected",
		Elapse:     7,
	}

	sqlite := &HookSqlite{pool: db}
	sqlite.AfterStage(data)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}

func TestHookSqliteAfterVerdict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	ti := time.Date(2023, time.August, 16, 14, 48, 0, 0, time.UTC)

	mock.ExpectExec("insert into verdicts").WithArgs(
		"abcdefg",
		ti.Format(TimeFormat),
		"alice@example.local",
		"192.0.2.1",
		"",
		"hello",
		"42@example.local",
		"reject-permanent",
		"virus detected",
		20,
	).WillReturnResult(sqlmock.NewResult(1, 1))

	data := &AfterVerdictData{
		SessionID:  "abcdefg",
		OccurredAt: ti,
		Sender:     "alice@example.local",
		ClientIP:   "192.0.2.1",
		AuthUser:   "",
		Subject:    "hello",
		MessageID:  "42@example.local",
		Verdict:    "reject-permanent",
		Reason:     "virus detected",
		Elapse:     20,
	}

	sqlite := &HookSqlite{pool: db}
	sqlite.AfterVerdict(data)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}
