package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/whimsylab/couplescourt/internal/model/court"
)

// SQLite implements Store on a local sqlite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path and initializes the
// schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_a_id TEXT,
		user_b_id TEXT,
		is_anonymous INTEGER NOT NULL DEFAULT 0,
		invite_token TEXT UNIQUE,
		user_a_name TEXT,
		user_b_name TEXT,
		user_a_joined INTEGER NOT NULL DEFAULT 0,
		user_b_joined INTEGER NOT NULL DEFAULT 0,
		user_a_token TEXT,
		user_b_token TEXT,
		expires_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		sender TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);

	CREATE TABLE IF NOT EXISTS resolutions (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		verdict TEXT NOT NULL,
		compromise TEXT NOT NULL,
		analysis_json TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_resolutions_session ON resolutions(session_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateSession persists the session record.
func (s *SQLite) CreateSession(ctx context.Context, sess court.Session) (court.Session, error) {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_a_id, user_b_id, is_anonymous, invite_token,
			user_a_name, user_b_name, user_a_joined, user_b_joined,
			user_a_token, user_b_token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, nullStr(sess.UserAID), nullStr(sess.UserBID), sess.IsAnonymous,
		nullStr(sess.InviteToken), nullStr(sess.UserAName), nullStr(sess.UserBName),
		sess.UserAJoined, sess.UserBJoined,
		nullStr(sess.UserAToken), nullStr(sess.UserBToken),
		nullTime(sess.ExpiresAt), formatTime(sess.CreatedAt))
	if err != nil {
		return court.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

const sessionColumns = `id, user_a_id, user_b_id, is_anonymous, invite_token,
	user_a_name, user_b_name, user_a_joined, user_b_joined,
	user_a_token, user_b_token, expires_at, created_at`

// SessionByID retrieves a session by identifier.
func (s *SQLite) SessionByID(ctx context.Context, id string) (court.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// SessionByInviteToken retrieves a session by its invite token.
func (s *SQLite) SessionByInviteToken(ctx context.Context, token string) (court.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE invite_token = ?`, token)
	return scanSession(row)
}

// BindPartner binds role B with a single conditional update, so concurrent
// join attempts cannot both win.
func (s *SQLite) BindPartner(ctx context.Context, inviteToken, partnerName, partnerToken string) (court.Session, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET user_b_name = ?, user_b_token = ?, user_b_joined = 1
		WHERE invite_token = ? AND user_b_joined = 0`,
		partnerName, partnerToken, inviteToken)
	if err != nil {
		return court.Session{}, fmt.Errorf("bind partner: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return court.Session{}, fmt.Errorf("bind partner: %w", err)
	}
	if affected == 0 {
		if _, lookupErr := s.SessionByInviteToken(ctx, inviteToken); lookupErr != nil {
			return court.Session{}, lookupErr
		}
		return court.Session{}, court.ErrSessionFull
	}

	return s.SessionByInviteToken(ctx, inviteToken)
}

// AppendMessage persists a message inside a transaction so the monotonic
// timestamp read and the insert cannot interleave with a concurrent append.
func (s *SQLite) AppendMessage(ctx context.Context, sessionID string, sender court.Role, content string) (court.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return court.Message{}, fmt.Errorf("append message: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sessions WHERE id = ?`, sessionID).Scan(&exists); err != nil {
		return court.Message{}, fmt.Errorf("append message: %w", err)
	}
	if exists == 0 {
		return court.Message{}, court.ErrSessionNotFound
	}

	ts := time.Now().UTC()
	var lastRaw sql.NullString
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(created_at) FROM messages WHERE session_id = ?`, sessionID).Scan(&lastRaw); err != nil {
		return court.Message{}, fmt.Errorf("append message: %w", err)
	}
	if lastRaw.Valid {
		if last, parseErr := time.Parse(time.RFC3339Nano, lastRaw.String); parseErr == nil && !ts.After(last) {
			ts = last
		}
	}

	msg := court.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		CreatedAt: ts,
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, sender, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, string(msg.Sender), msg.Content, formatTime(msg.CreatedAt))
	if err != nil {
		return court.Message{}, fmt.Errorf("append message: %w", err)
	}
	if msg.Seq, err = res.LastInsertId(); err != nil {
		return court.Message{}, fmt.Errorf("append message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return court.Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// MessagesSince returns messages newer than since, ascending.
func (s *SQLite) MessagesSince(ctx context.Context, sessionID string, since *time.Time) ([]court.Message, error) {
	if _, err := s.SessionByID(ctx, sessionID); err != nil {
		return nil, err
	}

	query := `SELECT seq, id, session_id, sender, content, created_at
		FROM messages WHERE session_id = ?`
	args := []any{sessionID}
	if since != nil {
		query += ` AND created_at > ?`
		args = append(args, formatTime(since.UTC()))
	}
	query += ` ORDER BY created_at ASC, seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// TailMessages returns at most the last n messages, ascending.
func (s *SQLite) TailMessages(ctx context.Context, sessionID string, n int) ([]court.Message, error) {
	if _, err := s.SessionByID(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, session_id, sender, content, created_at FROM (
			SELECT seq, id, session_id, sender, content, created_at
			FROM messages WHERE session_id = ?
			ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("tail messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// CreateResolution persists a resolution record.
func (s *SQLite) CreateResolution(ctx context.Context, r court.Resolution) (court.Resolution, error) {
	if _, err := s.SessionByID(ctx, r.SessionID); err != nil {
		return court.Resolution{}, err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	var analysisJSON sql.NullString
	if r.Analysis != nil {
		raw, err := json.Marshal(r.Analysis)
		if err != nil {
			return court.Resolution{}, fmt.Errorf("encode analysis: %w", err)
		}
		analysisJSON = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resolutions (id, session_id, verdict, compromise, analysis_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, r.Verdict, r.Compromise, analysisJSON, formatTime(r.CreatedAt))
	if err != nil {
		return court.Resolution{}, fmt.Errorf("insert resolution: %w", err)
	}
	return r, nil
}

// ResolutionsBySession returns resolutions most-recent-first.
func (s *SQLite) ResolutionsBySession(ctx context.Context, sessionID string) ([]court.Resolution, error) {
	if _, err := s.SessionByID(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, verdict, compromise, analysis_json, created_at
		FROM resolutions WHERE session_id = ?
		ORDER BY created_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list resolutions: %w", err)
	}
	defer rows.Close()

	var out []court.Resolution
	for rows.Next() {
		var r court.Resolution
		var analysisJSON sql.NullString
		var createdAt string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Verdict, &r.Compromise, &analysisJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		if analysisJSON.Valid {
			var a court.Analysis
			if err := json.Unmarshal([]byte(analysisJSON.String), &a); err == nil {
				r.Analysis = &a
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanMessages(rows *sql.Rows) ([]court.Message, error) {
	var out []court.Message
	for rows.Next() {
		var m court.Message
		var sender, createdAt string
		if err := rows.Scan(&m.Seq, &m.ID, &m.SessionID, &sender, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Sender = court.Role(sender)
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = ts
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanSession(row *sql.Row) (court.Session, error) {
	var s court.Session
	var userAID, userBID, inviteToken, userAName, userBName, userAToken, userBToken, expiresAt sql.NullString
	var createdAt string

	err := row.Scan(&s.ID, &userAID, &userBID, &s.IsAnonymous, &inviteToken,
		&userAName, &userBName, &s.UserAJoined, &s.UserBJoined,
		&userAToken, &userBToken, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return court.Session{}, court.ErrSessionNotFound
	}
	if err != nil {
		return court.Session{}, fmt.Errorf("scan session: %w", err)
	}

	s.UserAID = userAID.String
	s.UserBID = userBID.String
	s.InviteToken = inviteToken.String
	s.UserAName = userAName.String
	s.UserBName = userBName.String
	s.UserAToken = userAToken.String
	s.UserBToken = userBToken.String

	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return court.Session{}, fmt.Errorf("scan session: %w", err)
	}
	if expiresAt.Valid {
		ts, err := time.Parse(time.RFC3339Nano, expiresAt.String)
		if err != nil {
			return court.Session{}, fmt.Errorf("scan session: %w", err)
		}
		s.ExpiresAt = &ts
	}
	return s, nil
}

// timeLayout keeps a fixed-width fraction so stored timestamps compare
// correctly as strings in SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
