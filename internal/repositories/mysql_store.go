package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	intdb "budgetflow/internal/db"
	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS budget_requests (
		id             VARCHAR(64)    NOT NULL PRIMARY KEY,
		title          VARCHAR(255)   NOT NULL,
		project_id     VARCHAR(64)    NOT NULL,
		requester_id   VARCHAR(64)    NOT NULL,
		requester_name VARCHAR(255)   NOT NULL,
		department_id  VARCHAR(64)    NOT NULL,
		amount         DECIMAL(15,2)  NOT NULL,
		description    TEXT           NOT NULL,
		documents      JSON           NOT NULL,
		status         VARCHAR(32)    NOT NULL,
		history        JSON           NOT NULL,
		return_note    JSON           NULL,
		created_at     DATETIME(6)    NOT NULL,
		updated_at     DATETIME(6)    NOT NULL,
		version        BIGINT         NOT NULL DEFAULT 1,
		seq            BIGINT         NOT NULL AUTO_INCREMENT UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id          VARCHAR(64)  NOT NULL PRIMARY KEY,
		user_id     VARCHAR(64)  NOT NULL,
		request_id  VARCHAR(64)  NOT NULL DEFAULT '',
		message     TEXT         NOT NULL,
		severity    VARCHAR(16)  NOT NULL,
		is_read     TINYINT(1)   NOT NULL DEFAULT 0,
		created_at  DATETIME(6)  NOT NULL,
		seq         BIGINT       NOT NULL AUTO_INCREMENT UNIQUE,
		INDEX idx_notifications_user (user_id),
		INDEX idx_notifications_request (request_id)
	)`,
}

// columnUpgrades add columns that tables created by earlier releases lack.
var columnUpgrades = []struct {
	Table, Column, DDL string
}{
	{"budget_requests", "version", `ALTER TABLE budget_requests ADD COLUMN version BIGINT NOT NULL DEFAULT 1`},
	{"budget_requests", "return_note", `ALTER TABLE budget_requests ADD COLUMN return_note JSON NULL`},
}

const requestColumns = `id, title, project_id, requester_id, requester_name, department_id,
		amount, description, documents, status, history, return_note, created_at, updated_at, version`

// MySQLStore keeps requests in MySQL. History, documents and the return note
// are stored as JSON columns on the request row.
type MySQLStore struct {
	DB *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

// Migrate creates the tables when missing and adds columns older tables
// do not have yet.
func (s *MySQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range mysqlSchema {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	for _, up := range columnUpgrades {
		ok, err := intdb.HasColumn(ctx, s.DB, up.Table, up.Column)
		if err != nil {
			return fmt.Errorf("migrate: inspect %s.%s: %w", up.Table, up.Column, err)
		}
		if ok {
			continue
		}
		if _, err := s.DB.ExecContext(ctx, up.DDL); err != nil {
			return fmt.Errorf("migrate: add %s.%s: %w", up.Table, up.Column, err)
		}
	}
	return nil
}

func (s *MySQLStore) GetRequest(ctx context.Context, id string) (models.Request, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM budget_requests WHERE id = ?`, id)
	return scanRequest(row, id)
}

func (s *MySQLStore) Snapshot(ctx context.Context) ([]models.Request, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+requestColumns+` FROM budget_requests ORDER BY seq`)
	if err != nil {
		return nil, domain.InternalError{Msg: "query requests", Err: err}
	}
	defer rows.Close()

	out := []models.Request{}
	for rows.Next() {
		r, err := scanRequest(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "iterate requests", Err: err}
	}
	return out, nil
}

func (s *MySQLStore) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, user_id, request_id, message, severity, is_read, created_at
		FROM notifications WHERE user_id = ? ORDER BY seq DESC`, userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "query notifications", Err: err}
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var sev string
		if err := rows.Scan(&n.ID, &n.UserID, &n.RequestID, &n.Message, &sev, &n.Read, &n.Timestamp); err != nil {
			return nil, domain.InternalError{Msg: "scan notification", Err: err}
		}
		n.Severity = models.Severity(sev)
		n.Timestamp = n.Timestamp.UTC()
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "iterate notifications", Err: err}
	}
	return out, nil
}

func (s *MySQLStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.InternalError{Msg: "begin transaction", Err: err}
	}
	if err := fn(&mysqlTx{ctx: ctx, tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return domain.InternalError{Msg: "commit transaction", Err: err}
	}
	return nil
}

type mysqlTx struct {
	ctx context.Context
	tx  *sql.Tx
}

// GetRequest locks the row until the transaction ends.
func (t *mysqlTx) GetRequest(id string) (models.Request, error) {
	row := t.tx.QueryRowContext(t.ctx, `SELECT `+requestColumns+` FROM budget_requests WHERE id = ? FOR UPDATE`, id)
	return scanRequest(row, id)
}

func (t *mysqlTx) RequestIDs() ([]string, error) {
	rows, err := t.tx.QueryContext(t.ctx, `SELECT id FROM budget_requests FOR UPDATE`)
	if err != nil {
		return nil, domain.InternalError{Msg: "query request ids", Err: err}
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.InternalError{Msg: "scan request id", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "iterate request ids", Err: err}
	}
	return ids, nil
}

func (t *mysqlTx) InsertRequest(r models.Request) error {
	cols, err := encodeRequest(r)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(t.ctx, `INSERT INTO budget_requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, cols...)
	return mapWriteError(err, r.ID)
}

func (t *mysqlTx) ReplaceRequest(oldID string, r models.Request) error {
	cols, err := encodeRequest(r)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(t.ctx, `UPDATE budget_requests SET
		id = ?, title = ?, project_id = ?, requester_id = ?, requester_name = ?, department_id = ?,
		amount = ?, description = ?, documents = ?, status = ?, history = ?, return_note = ?,
		created_at = ?, updated_at = ?, version = ?
		WHERE id = ?`, append(cols, oldID)...)
	if err := mapWriteError(err, r.ID); err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError{Resource: "request", ID: oldID}
	}
	return nil
}

func (t *mysqlTx) AppendNotification(n models.Notification) error {
	_, err := t.tx.ExecContext(t.ctx, `INSERT INTO notifications (id, user_id, request_id, message, severity, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.RequestID, n.Message, string(n.Severity), n.Read, n.Timestamp.UTC())
	if err != nil {
		return domain.InternalError{Msg: "insert notification", Err: err}
	}
	return nil
}

func (t *mysqlTx) RetargetNotifications(oldRequestID, newRequestID string) error {
	_, err := t.tx.ExecContext(t.ctx, `UPDATE notifications SET request_id = ? WHERE request_id = ?`, newRequestID, oldRequestID)
	if err != nil {
		return domain.InternalError{Msg: "retarget notifications", Err: err}
	}
	return nil
}

func (t *mysqlTx) MarkNotificationRead(id string) error {
	var read bool
	err := t.tx.QueryRowContext(t.ctx, `SELECT is_read FROM notifications WHERE id = ? FOR UPDATE`, id).Scan(&read)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: "notification", ID: id}
	}
	if err != nil {
		return domain.InternalError{Msg: "query notification", Err: err}
	}
	if read {
		return nil
	}
	if _, err := t.tx.ExecContext(t.ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id); err != nil {
		return domain.InternalError{Msg: "mark notification read", Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner, id string) (models.Request, error) {
	var (
		r                        models.Request
		status                   string
		documents, history, note []byte
	)
	err := row.Scan(&r.ID, &r.Title, &r.ProjectID, &r.RequesterID, &r.RequesterName, &r.DepartmentID,
		&r.Amount, &r.Description, &documents, &status, &history, &note, &r.CreatedAt, &r.UpdatedAt, &r.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Request{}, domain.NotFoundError{Resource: "request", ID: id}
	}
	if err != nil {
		return models.Request{}, domain.InternalError{Msg: "scan request", Err: err}
	}
	r.Status = models.Status(status)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()

	if err := json.Unmarshal(documents, &r.Documents); err != nil {
		return models.Request{}, domain.InternalError{Msg: "decode documents", Err: err}
	}
	if err := json.Unmarshal(history, &r.History); err != nil {
		return models.Request{}, domain.InternalError{Msg: "decode history", Err: err}
	}
	if len(note) > 0 && string(note) != "null" {
		r.ReturnNote = &models.ReturnNote{}
		if err := json.Unmarshal(note, r.ReturnNote); err != nil {
			return models.Request{}, domain.InternalError{Msg: "decode return note", Err: err}
		}
	}
	return r, nil
}

func encodeRequest(r models.Request) ([]any, error) {
	docs := r.Documents
	if docs == nil {
		docs = []string{}
	}
	documents, err := json.Marshal(docs)
	if err != nil {
		return nil, domain.InternalError{Msg: "encode documents", Err: err}
	}
	history, err := json.Marshal(r.History)
	if err != nil {
		return nil, domain.InternalError{Msg: "encode history", Err: err}
	}
	var note any
	if r.ReturnNote != nil {
		b, err := json.Marshal(r.ReturnNote)
		if err != nil {
			return nil, domain.InternalError{Msg: "encode return note", Err: err}
		}
		note = b
	}
	return []any{
		r.ID, r.Title, r.ProjectID, r.RequesterID, r.RequesterName, r.DepartmentID,
		r.Amount, r.Description, documents, string(r.Status), history, note,
		r.CreatedAt.UTC().Truncate(time.Microsecond), r.UpdatedAt.UTC().Truncate(time.Microsecond), r.Version,
	}, nil
}

func mapWriteError(err error, id string) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return domain.ConflictError{Resource: "request", Msg: "identifier " + id + " already exists", Err: err}
	}
	return domain.InternalError{Msg: "write request", Err: err}
}
