package sift

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
)

const (
	mysqlStageQuery   string = "insert into stages (id, session_id, occurred_at, stage, verdict, skipped, reason, elapse) values (?, ?, ?, ?, ?, ?, ?, ?)"
	mysqlVerdictQuery string = "insert into verdicts (id, occurred_at, mail_from, client_ip, auth_user, subject, message_id, verdict, reason, elapse) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
)

type HookMysql struct {
	pool *sql.DB // Database connection pool.
}

func (h *HookMysql) Name() string {
	return "mysql"
}

func (h *HookMysql) conn() (*sql.DB, error) {
	if h.pool != nil {
		return h.pool, nil
	}

	dsn := os.Getenv("DSN")
	if len(dsn) == 0 {
		return nil, fmt.Errorf("missing dsn for mysql, please set `DSN`")
	}

	var err error
	h.pool, err = sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open error: %s", err)
	}

	return h.pool, nil
}

func (h *HookMysql) AfterInit() {
}

func (h *HookMysql) AfterStage(d *AfterStageData) {
	conn, err := h.conn()
	if err != nil {
		Log.Warnf("[%s] %s", h.Name(), err)
		return
	}

	_, err = conn.Exec(
		mysqlStageQuery,
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

func (h *HookMysql) AfterVerdict(d *AfterVerdictData) {
	conn, err := h.conn()
	if err != nil {
		Log.Warnf("[%s] %s", h.Name(), err)
		return
	}

	_, err = conn.Exec(
		mysqlVerdictQuery,
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
