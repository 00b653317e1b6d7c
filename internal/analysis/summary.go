// Package analysis computes statistics over recorded sessions.
package analysis

import (
	"sort"

	"github.com/SeamusWaldron/cubesim/internal/notation"
	"github.com/SeamusWaldron/cubesim/internal/storage"
	"github.com/SeamusWaldron/cubesim/pkg/types"
)

// DefaultPauseThresholdMs is the gap that counts as a pause.
const DefaultPauseThresholdMs = 1500

// SessionSummary contains statistics for a single session.
type SessionSummary struct {
	SessionID      string           `json:"session_id"`
	TotalMoves     int              `json:"total_moves"`
	NetMoves       int              `json:"net_moves"`
	Efficiency     float64          `json:"efficiency"`
	TPS            float64          `json:"tps"`
	LongestPauseMs int64            `json:"longest_pause_ms"`
	PauseCount     int              `json:"pause_count"`
	AvgMoveGapMs   float64          `json:"avg_move_gap_ms"`
	SourceCounts   map[string]int   `json:"source_counts"`
	Profile        *MovementProfile `json:"profile"`
}

// PauseInfo represents a pause between two moves.
type PauseInfo struct {
	AfterMoveIndex int   `json:"after_move_index"`
	DurationMs     int64 `json:"duration_ms"`
	TsMs           int64 `json:"ts_ms"`
}

// Summarize computes the summary of a session from its recorded moves,
// which must be in index order.
func Summarize(sessionID string, rows []storage.Move) (*SessionSummary, error) {
	moves := make([]types.Move, 0, len(rows))
	sources := make(map[string]int)
	for _, row := range rows {
		m, err := row.ToMove()
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
		sources[row.Source]++
	}

	s := &SessionSummary{
		SessionID:      sessionID,
		TotalMoves:     len(moves),
		NetMoves:       len(notation.Simplify(moves)),
		SourceCounts:   sources,
		LongestPauseMs: FindLongestPause(rows),
		PauseCount:     len(AnalyzePauses(rows, DefaultPauseThresholdMs)),
		AvgMoveGapMs:   CalculateAvgMoveGap(rows),
		Profile:        AnalyzeMovementProfile(moves),
	}
	if s.TotalMoves > 0 {
		s.Efficiency = float64(s.NetMoves) / float64(s.TotalMoves)
	}
	if len(rows) > 0 {
		s.TPS = CalculateTPS(len(rows), rows[len(rows)-1].TsMs)
	}
	return s, nil
}

// AnalyzePauses finds all gaps of at least thresholdMs between moves.
func AnalyzePauses(rows []storage.Move, thresholdMs int64) []PauseInfo {
	var pauses []PauseInfo

	for i := 1; i < len(rows); i++ {
		gap := rows[i].TsMs - rows[i-1].TsMs
		if gap >= thresholdMs {
			pauses = append(pauses, PauseInfo{
				AfterMoveIndex: rows[i-1].Index,
				DurationMs:     gap,
				TsMs:           rows[i-1].TsMs,
			})
		}
	}

	return pauses
}

// CalculateTPS calculates turns per second over durationMs.
func CalculateTPS(turns int, durationMs int64) float64 {
	if durationMs <= 0 {
		return 0
	}
	return float64(turns) / (float64(durationMs) / 1000.0)
}

// CalculateAvgMoveGap calculates the average time between moves.
func CalculateAvgMoveGap(rows []storage.Move) float64 {
	if len(rows) < 2 {
		return 0
	}

	totalGap := rows[len(rows)-1].TsMs - rows[0].TsMs
	return float64(totalGap) / float64(len(rows)-1)
}

// FindLongestPause finds the longest gap between moves.
func FindLongestPause(rows []storage.Move) int64 {
	var longest int64

	for i := 1; i < len(rows); i++ {
		gap := rows[i].TsMs - rows[i-1].TsMs
		if gap > longest {
			longest = gap
		}
	}

	return longest
}

// MovementProfile counts which layers are turned and in what order.
type MovementProfile struct {
	FaceCounts    map[string]int `json:"face_counts"`
	Forward       int            `json:"forward"`
	Reversed      int            `json:"reversed"`
	MostUsedFace  string         `json:"most_used_face"`
	FaceSequences map[string]int `json:"face_sequences"` // e.g. "qd" -> count
}

// AnalyzeMovementProfile analyzes which layers and directions are most used.
func AnalyzeMovementProfile(moves []types.Move) *MovementProfile {
	profile := &MovementProfile{
		FaceCounts:    make(map[string]int),
		FaceSequences: make(map[string]int),
	}

	for i, m := range moves {
		profile.FaceCounts[m.Face.String()]++
		if m.Direction == types.Reversed {
			profile.Reversed++
		} else {
			profile.Forward++
		}

		// Track 2-move face sequences
		if i > 0 {
			seq := moves[i-1].Face.String() + m.Face.String()
			profile.FaceSequences[seq]++
		}
	}

	// Ties go to the earlier key so the result is stable.
	maxFaceCount := 0
	for _, face := range types.Faces() {
		if count := profile.FaceCounts[face.String()]; count > maxFaceCount {
			maxFaceCount = count
			profile.MostUsedFace = face.String()
		}
	}

	return profile
}

// SequenceCount is a face pair and how often it occurred.
type SequenceCount struct {
	Sequence string
	Count    int
}

// TopSequences returns the n most frequent face pairs, most frequent first.
func (p *MovementProfile) TopSequences(n int) []SequenceCount {
	out := make([]SequenceCount, 0, len(p.FaceSequences))
	for seq, count := range p.FaceSequences {
		out = append(out, SequenceCount{Sequence: seq, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Sequence < out[j].Sequence
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
