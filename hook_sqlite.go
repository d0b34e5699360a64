package sift

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

const (
	sqliteStageQuery       string = "insert into stages (id, session_id, occurred_at, stage, verdict, skipped, reason, elapse) values (?, ?, ?, ?, ?, ?, ?, ?)"
	sqliteVerdictQuery     string = "insert into verdicts (id, occurred_at, mail_from, client_ip, auth_user, subject, message_id, verdict, reason, elapse) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	sqliteStageCreateTable string = `
	create table if not exists stages (
    id text primary key,
    session_id text,
    stage text,
    verdict text,
    skipped integer,
    reason text,
    occurred_at datetime default CURRENT_TIMESTAMP,
    elapse integer
	)`
	sqliteVerdictCreateTable string = `
	create table if not exists verdicts (
    id text primary key,
    mail_from text,
    client_ip text,
    auth_user text,
    subject text,
    message_id text,
    verdict text,
    reason text,
    occurred_at datetime default CURRENT_TIMESTAMP,
    elapse integer
	)`
)

type HookSqlite struct {
	pool *sql.DB // Database connection pool.
}

func (h *HookSqlite) Name() string {
	return "sqlite"
}

func (h *HookSqlite) conn() (*sql.DB, error) {
	if h.pool != nil {
		return h.pool, nil
	}

	dsn := os.Getenv("DSN")
	if len(dsn) == 0 {
		return nil, fmt.Errorf("missing dsn for sqlite, please set `DSN`")
	}

	var err error
	h.pool, err = sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open error: %s(%#v)", err.Error(), err)
	}

	return h.pool, nil
}

func (h *HookSqlite) AfterInit() {
	conn, err := h.conn()
	if err != nil {
		Log.Warnf("[%s] %s", h.Name(), err)
		return
	}

	_, err = conn.Exec(sqliteStageCreateTable)
	if err != nil {
		Log.Warnf("[%s] db exec error: %s", h.Name(), err)
	}

	_, err = conn.Exec(sqliteVerdictCreateTable)
	if err != nil {
		Log.Warnf("[%s] db exec error: %s", h.Name(), err)
	}
}

func (h *HookSqlite) AfterStage(d *AfterStageData) {
	conn, err := h.conn()
	if err != nil {
		Log.Warnf("[%s] %s", h.Name(), err)
		return
	}

	_, err = conn.Exec(
		sqliteStageQuery,
		GenID().String(),
		d.SessionID,
		d.OccurredAt.Format(TimeFormat),
		d.Stage,
		d.Verdict,
		d.Skipped,
		d.Reason,
		d.Elapse,
	)
	if err != nil {
		Log.Warnf("[%s] db exec error: %s", h.Name(), err)
	}
}

func (h *HookSqlite) AfterVerdict(d *AfterVerdictData) {
	conn, err := h.conn()
	if err != nil {
		Log.Warnf("[%s] %s", h.Name(), err)
		return
	}

	_, err = conn.Exec(
		sqliteVerdictQuery,
		d.SessionID,
		d.OccurredAt.Format(TimeFormat),
		d.Sender,
		d.ClientIP,
		d.AuthUser,
		d.Subject,
		d.MessageID,
		d.Verdict,
		d.Reason,
		d.Elapse,
	)
	if err != nil {
		Log.Warnf("[%s] db exec error: %s", h.Name(), err)
	}
}
