package game

import (
	"errors"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/staging"
)

// ErrInconsistent reports a staging area holding three of a type while
// nothing on the board can be selected. Tail elimination should make this
// unreachable.
var ErrInconsistent = errors.New("game: staging holds an uneliminated triple")

// Evaluate decides the session status for a board and staging sequence.
func Evaluate(board, stage []domain.Tile) domain.Status {
	st, _ := Check(board, stage)
	return st
}

// Check is Evaluate that also reports ErrInconsistent.
//
// Rules, in order: an empty board and empty staging area is a win; a board
// with no unblocked tile (vacuously true when empty) is a loss unless some
// type already has three staged; anything else is still playing.
func Check(board, stage []domain.Tile) (domain.Status, error) {
	if len(board) == 0 && len(stage) == 0 {
		return domain.Won, nil
	}
	for _, t := range board {
		if !t.Blocked {
			return domain.Playing, nil
		}
	}
	for _, n := range staging.CountTypes(stage) {
		if n >= 3 {
			return domain.Playing, ErrInconsistent
		}
	}
	return domain.Lost, nil
}
