// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/remaimber-it/interview-coach/internal/domain/interview"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    state TEXT NOT NULL,
    candidate_name TEXT NOT NULL,
    job_role TEXT NOT NULL,
    experience TEXT NOT NULL,
    skills TEXT NOT NULL,
    interview_type TEXT NOT NULL,
    target_count INTEGER NOT NULL,
    current_no INTEGER NOT NULL,
    current_question TEXT NOT NULL,
    report_text TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);

CREATE TABLE IF NOT EXISTS records (
    session_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    question_no INTEGER NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    evaluation TEXT NOT NULL,
    score INTEGER NOT NULL,
    PRIMARY KEY (session_id, position),
    FOREIGN KEY (session_id) REFERENCES sessions(id)
);
`

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens (and creates if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	inMemory := dbPath == ":memory:"
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// Pragmas go in the DSN so every pooled connection gets them. Write
	// transactions take the lock at BEGIN and wait up to busy_timeout for it.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
	if !inMemory {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if inMemory {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Sessions
// ============================================================================

func (s *SQLiteStore) SaveSession(ctx context.Context, session *interview.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p := session.Profile
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, state, candidate_name, job_role, experience, skills, interview_type,
			target_count, current_no, current_question, report_text, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			candidate_name = excluded.candidate_name,
			job_role = excluded.job_role,
			experience = excluded.experience,
			skills = excluded.skills,
			interview_type = excluded.interview_type,
			target_count = excluded.target_count,
			current_no = excluded.current_no,
			current_question = excluded.current_question,
			report_text = excluded.report_text,
			updated_at = excluded.updated_at`,
		session.ID, string(session.State), p.Name, p.Role, string(p.Experience), p.Skills, string(p.InterviewType),
		session.TargetQuestionCount, session.CurrentQuestionNo, session.CurrentQuestion, session.ReportText,
		session.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE session_id = ?", session.ID); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	for i, r := range session.Records {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO records (session_id, position, question_no, question, answer, evaluation, score) VALUES (?, ?, ?, ?, ?, ?, ?)",
			session.ID, i, r.QuestionNo, r.Question, r.Answer, r.Evaluation, r.Score,
		)
		if err != nil {
			return fmt.Errorf("save record %d: %w", r.QuestionNo, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*interview.Session, error) {
	var (
		session   interview.Session
		state     string
		exp       string
		ivType    string
		updatedAt int64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, state, candidate_name, job_role, experience, skills, interview_type,
			target_count, current_no, current_question, report_text, updated_at
		FROM sessions WHERE id = ?`, id,
	).Scan(
		&session.ID, &state, &session.Profile.Name, &session.Profile.Role, &exp, &session.Profile.Skills, &ivType,
		&session.TargetQuestionCount, &session.CurrentQuestionNo, &session.CurrentQuestion, &session.ReportText,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	session.State = interview.State(state)
	session.Profile.Experience = interview.ExperienceBand(exp)
	session.Profile.InterviewType = interview.InterviewType(ivType)
	session.UpdatedAt = time.Unix(0, updatedAt).UTC()

	rows, err := s.db.QueryContext(ctx,
		"SELECT question_no, question, answer, evaluation, score FROM records WHERE session_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r interview.Record
		if err := rows.Scan(&r.QuestionNo, &r.Question, &r.Answer, &r.Evaluation, &r.Score); err != nil {
			return nil, err
		}
		session.Records = append(session.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &session, nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE session_id = ?", id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (s *SQLiteStore) CleanupIdle(ctx context.Context, cutoff time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	n := cutoff.UnixNano()
	_, err = tx.ExecContext(ctx,
		"DELETE FROM records WHERE session_id IN (SELECT id FROM sessions WHERE updated_at < ?)", n)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", n)
	if err != nil {
		return 0, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(removed), nil
}
