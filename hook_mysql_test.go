package sift

import (
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/go-sql-driver/mysql"
)

func TestHookMysqlConst(t *testing.T) {
	var expect string
	var got string

	expect = "insert into stages (id, session_id, occurred_at, stage, verdict, skipped, reason, elapse) values (?, ?, ?, ?, ?, ?, ?, ?)"
	got = mysqlStageQuery
	if got != expect {
		t.Errorf("expected %s, got %s", expect, got)
	}

	expect = "insert into verdicts (id, occurred_at, mail_from, client_ip, auth_user, subject, message_id, verdict, reason, elapse) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	got = mysqlVerdictQuery
	if got != expect {
		t.Errorf("expected %s, got %s", expect, got)
	}
}

func TestHookMysqlName(t *testing.T) {
	mysql := &HookMysql{}
	var expect string
	var got string

	expect = "mysql"
	got = mysql.Name()
	if got != expect {
		t.Errorf("expected %s, got %s", expect, got)
	}
}

func TestHookMysqlConn(t *testing.T) {
	expectError := "missing dsn for mysql, please set `DSN`"
	mysql := &HookMysql{}
	_, err := mysql.conn()

	if err != nil && fmt.Sprintf("%s", err) != expectError {
		t.Errorf("expected %s, got %s", expectError, err)
	}
}

type AnyID struct{}

func (a AnyID) Match(v driver.Value) bool {
	_, ok := v.(string)
	return ok
}

func TestHookMysqlAfterStage(t *testing.T) {
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
		"greylist",
		"reject-temporary",
		false,
		"greylisted, please try again later",
		3,
	).WillReturnResult(sqlmock.NewResult(1, 1))

	data := &AfterStageData{
		SessionID:  "abcdefg",
		OccurredAt: ti,
		Stage:      "greylist",
		Verdict:    "reject-temporary",
		Skipped:    false,
		Reason:     "greylisted, please try again later",
		Elapse:     3,
	}

	mysql := &HookMysql{pool: db}
	mysql.AfterStage(data)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}

func TestHookMysqlAfterVerdict(t *testing.T) {
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
		"alice",
		"hello",
		"42@example.local",
		"accept",
		"",
		20,
	).WillReturnResult(sqlmock.NewResult(1, 1))

	data := &AfterVerdictData{
		SessionID:  "abcdefg",
		OccurredAt: ti,
		Sender:     "alice@example.local",
		ClientIP:   "192.0.2.1",
		AuthUser:   "alice",
		Subject:    "hello",
		MessageID:  "42@example.local",
		Verdict:    "accept",
		Reason:     "",
		Elapse:     20,
	}

	mysql := &HookMysql{pool: db}
	mysql.AfterVerdict(data)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}
