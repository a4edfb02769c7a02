// Package capture records instrument sessions to SQLite for post-flight
// inspection. The instrument only ever writes; reading happens offline
// through the Reader.
package capture

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store is the write side of a capture database. The connection opens
// lazily on first use, so an enabled-but-idle recorder costs nothing.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	closeOnce sync.Once
	closeErr  error
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("capture database path must be set")
	}

	return &Store{dbPath: dbPath}, nil
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", "file:"+s.dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
		if err != nil {
			s.writeDBErr = err
			return
		}

		if _, err = db.Exec(schemaSQL); err != nil {
			db.Close()
			s.writeDBErr = err
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

const insertSessionSQL = `
INSERT INTO sessions (endpoint, config)
VALUES (?, ?)`

// CreateSession opens a new session and returns its ID. The config
// snapshot may be a string, raw bytes or anything JSON-marshalable.
func (s *Store) CreateSession(endpoint string, config any) (sessionID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch v := config.(type) {
		case string:
			configData.Valid = true
			configData.String = v

		case []byte:
			configData.Valid = true
			configData.String = string(v)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.Prepare(insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer func() {
		if cErr := stmt.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing statement: %w", cErr)
		}
	}()

	result, err := stmt.Exec(endpoint, configData)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	return result.LastInsertId()
}

const setAircraftSQL = `
UPDATE sessions
SET aircraft = ?
WHERE id = ? AND (aircraft IS NULL OR aircraft = '')`

// SetSessionAircraft records the aircraft title once it is known. The
// first title wins; later calls leave it untouched.
func (s *Store) SetSessionAircraft(sessionID int64, aircraft string) error {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	if _, err = db.Exec(setAircraftSQL, aircraft, sessionID); err != nil {
		return fmt.Errorf("updating session aircraft: %w", err)
	}

	return nil
}

const insertFrameSQL = `
INSERT INTO frames (session_id,
                    timestamp,
                    altitude,
                    pressure_code,
                    bug_angle,
                    kohlsman,
                    bug_raw,
                    failure)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// BatchInsertFrames stores a batch of frames in a single transaction.
// Timestamps are normalized to UTC on the way in so they compare correctly
// inside SQLite.
func (s *Store) BatchInsertFrames(frames []Frame) (err error) {
	if len(frames) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if cErr := tx.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && err == nil {
			err = fmt.Errorf("rolling back transaction: %w", cErr)
		}
	}()

	stmt, err := tx.Prepare(insertFrameSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() {
		if cErr := stmt.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing statement: %w", cErr)
		}
	}()

	for _, frame := range frames {
		_, err = stmt.Exec(
			frame.SessionID,
			frame.Timestamp.UTC(),
			frame.Altitude,
			frame.PressureCode,
			frame.BugAngle,
			frame.Kohlsman,
			frame.BugRaw,
			frame.Failure,
		)
		if err != nil {
			return fmt.Errorf("inserting frame: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.writeDB != nil {
			s.closeErr = s.writeDB.Close()
			s.writeDB = nil
		}
	})

	return s.closeErr
}
