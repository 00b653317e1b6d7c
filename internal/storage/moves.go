package storage

import (
	"database/sql"
	"fmt"

	"github.com/SeamusWaldron/cubesim/pkg/types"
)

// Move represents a completed turn in the database.
type Move struct {
	MoveID    int64
	SessionID string
	Index     int
	TsMs      int64
	Face      string
	Direction int
	Notation  string
	Source    string
}

// ToMove converts the row back into a puzzle move.
func (m Move) ToMove() (types.Move, error) {
	runes := []rune(m.Face)
	if len(runes) != 1 {
		return types.Move{}, fmt.Errorf("%w: face %q", types.ErrInvalidMove, m.Face)
	}
	face, ok := types.FaceForKey(runes[0])
	if !ok {
		return types.Move{}, fmt.Errorf("%w: face %q", types.ErrInvalidMove, m.Face)
	}

	mv := types.Move{Face: face, Direction: types.Direction(m.Direction)}
	if err := mv.Validate(); err != nil {
		return types.Move{}, err
	}
	return mv, nil
}

// MoveRepository provides CRUD operations for moves.
type MoveRepository struct {
	db *DB
}

// NewMoveRepository creates a new move repository.
func NewMoveRepository(db *DB) *MoveRepository {
	return &MoveRepository{db: db}
}

// Create records a completed turn and returns its ID.
func (r *MoveRepository) Create(sessionID string, index int, tsMs int64, mv types.Move, src types.Source) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO moves (session_id, move_index, ts_ms, face, direction, notation, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sessionID, index, tsMs, string(mv.Face.Key()), int(mv.Direction), mv.Notation(), string(src))
	if err != nil {
		return 0, fmt.Errorf("failed to create move: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get move ID: %w", err)
	}

	return id, nil
}

// CreateBatch records several turns in one transaction.
func (r *MoveRepository) CreateBatch(moves []Move) error {
	return r.db.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO moves (session_id, move_index, ts_ms, face, direction, notation, source)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, m := range moves {
			_, err := stmt.Exec(m.SessionID, m.Index, m.TsMs, m.Face, m.Direction, m.Notation, m.Source)
			if err != nil {
				return fmt.Errorf("failed to insert move %d: %w", m.Index, err)
			}
		}

		return nil
	})
}

// GetBySession retrieves all moves for a session in order.
func (r *MoveRepository) GetBySession(sessionID string) ([]Move, error) {
	rows, err := r.db.Query(`
		SELECT move_id, session_id, move_index, ts_ms, face, direction, notation, source
		FROM moves
		WHERE session_id = ?
		ORDER BY move_index
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var m Move
		err := rows.Scan(&m.MoveID, &m.SessionID, &m.Index, &m.TsMs, &m.Face, &m.Direction, &m.Notation, &m.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		moves = append(moves, m)
	}

	return moves, rows.Err()
}

// Count returns the number of moves for a session.
func (r *MoveRepository) Count(sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM moves WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count moves: %w", err)
	}
	return count, nil
}

// NextIndex returns the index the next move of a session should use.
func (r *MoveRepository) NextIndex(sessionID string) (int, error) {
	var next int
	err := r.db.QueryRow(`
		SELECT COALESCE(MAX(move_index) + 1, 0) FROM moves WHERE session_id = ?
	`, sessionID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next move index: %w", err)
	}
	return next, nil
}
