package capture

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// WithStartTime keeps only frames at or after startTime.
func WithStartTime(startTime time.Time) func(*FrameIterator) {
	return func(it *FrameIterator) {
		it.startTime = &startTime
	}
}

// WithEndTime keeps only frames at or before endTime.
func WithEndTime(endTime time.Time) func(*FrameIterator) {
	return func(it *FrameIterator) {
		it.endTime = &endTime
	}
}

// WithTimeRange keeps only frames between startTime and endTime inclusive.
func WithTimeRange(startTime, endTime time.Time) func(*FrameIterator) {
	return func(it *FrameIterator) {
		it.startTime = &startTime
		it.endTime = &endTime
	}
}

// Reader is the offline read side of a capture database.
type Reader struct {
	db *sql.DB
}

func NewReader(dbPath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening capture database: %w", err)
	}

	return &Reader{db: db}, nil
}

const selectSessionSQL = `
SELECT
    id,
    start_time,
    aircraft,
    endpoint,
    config
FROM sessions
WHERE
    id = ?`

// Session returns a session by its ID.
func (r *Reader) Session(id int64) (session *SessionData, err error) {
	stmt, err := r.db.Prepare(selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer func() {
		if cErr := stmt.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing statement: %w", cErr)
		}
	}()

	var sess SessionData
	var aircraft, config sql.NullString
	if err = stmt.QueryRow(id).Scan(&sess.ID, &sess.StartTime, &aircraft, &sess.Endpoint, &config); err != nil {
		err = fmt.Errorf("scanning session: %w", err)
		return
	}

	sess.Aircraft = aircraft.String
	if config.Valid {
		sess.Config = &config.String
	}

	return &sess, nil
}

const selectSessionsSQL = `
SELECT
    id,
    start_time,
    aircraft,
    endpoint,
    config
FROM sessions
ORDER BY start_time`

// Sessions lists every session in the capture, oldest first.
func (r *Reader) Sessions() (sessions []SessionData, err error) {
	rows, err := r.db.Query(selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer func() {
		if cErr := rows.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cErr)
		}
	}()

	for rows.Next() {
		var sess SessionData
		var aircraft, config sql.NullString
		if err = rows.Scan(&sess.ID, &sess.StartTime, &aircraft, &sess.Endpoint, &config); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}

		sess.Aircraft = aircraft.String
		if config.Valid {
			sess.Config = &config.String
		}

		sessions = append(sessions, sess)
	}

	err = rows.Err()
	return
}

const selectFramesSQL = `
SELECT
    session_id,
    timestamp,
    altitude,
    pressure_code,
    bug_angle,
    kohlsman,
    bug_raw,
    failure
FROM frames
WHERE
    session_id = ?`

// Frames iterates the frames of a session in timestamp order, optionally
// restricted to a time range. The caller owns the iterator and must Close
// it.
func (r *Reader) Frames(sessionID int64, options ...func(*FrameIterator)) (*FrameIterator, error) {
	it := FrameIterator{}
	for _, option := range options {
		option(&it)
	}

	var sb strings.Builder
	sb.WriteString(selectFramesSQL)

	args := []any{sessionID}
	if it.startTime != nil {
		sb.WriteString(" AND timestamp >= ?")
		args = append(args, it.startTime.UTC())
	}
	if it.endTime != nil {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, it.endTime.UTC())
	}
	sb.WriteString(" ORDER BY timestamp, id")

	rows, err := r.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying frames: %w", err)
	}

	it.rows = rows
	return &it, nil
}

// Close releases the underlying database connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// FrameIterator walks the frames of one session.
type FrameIterator struct {
	startTime *time.Time
	endTime   *time.Time

	rows    *sql.Rows
	current Frame
	err     error
}

// Next advances to the next frame.
func (it *FrameIterator) Next() bool {
	if !it.rows.Next() {
		return false
	}

	var frame Frame
	if err := it.rows.Scan(
		&frame.SessionID,
		&frame.Timestamp,
		&frame.Altitude,
		&frame.PressureCode,
		&frame.BugAngle,
		&frame.Kohlsman,
		&frame.BugRaw,
		&frame.Failure,
	); err != nil {
		it.err = err
		return false
	}

	it.current = frame
	return true
}

// Current returns the frame Next advanced to.
func (it *FrameIterator) Current() Frame {
	return it.current
}

// Error returns any error that occurred during iteration.
func (it *FrameIterator) Error() error {
	if it.err != nil {
		return it.err
	}

	return it.rows.Err()
}

// Close releases the database resources.
func (it *FrameIterator) Close() error {
	return it.rows.Close()
}
