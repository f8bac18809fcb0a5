package domain

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no valid role is bound to the caller.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrHostRequired is returned when a host-only operation lacks a host identity.
	ErrHostRequired = errors.New("host session required")
	// ErrPlayerRequired is returned when a player-only operation lacks a player identity.
	ErrPlayerRequired = errors.New("player session required")
	// ErrAccessDenied indicates an ownership mismatch (wrong host for a game, etc).
	ErrAccessDenied = errors.New("access denied")
	// ErrHostCannotJoin rejects a host token used for a player join.
	ErrHostCannotJoin = errors.New("hosts cannot join as player")
	// ErrGameNotFound is returned when a game id resolves to nothing.
	ErrGameNotFound = errors.New("game not found")
	// ErrQuestionNotFound indicates the question bank has no such question.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCellNotFound indicates a question id not on this game's board.
	ErrCellNotFound = errors.New("question not on board")
	// ErrGameMismatch indicates a player acting outside the game they joined.
	ErrGameMismatch = errors.New("game mismatch")
	// ErrPlayerNotRegistered indicates an unknown player id for the game.
	ErrPlayerNotRegistered = errors.New("player not registered")
	// ErrAlreadyCompleted rejects selecting a cell that has been resolved.
	ErrAlreadyCompleted = errors.New("question already completed")
	// ErrAlreadyAnswered rejects answering a cell that has been resolved.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrQuestionNotActive rejects answering a question that is not in flight.
	ErrQuestionNotActive = errors.New("question not currently active")
	// ErrNameRequired rejects an empty player display name.
	ErrNameRequired = errors.New("name required")
	// ErrInvalidChoice rejects a choice outside A, B, C, D.
	ErrInvalidChoice = errors.New("choice must be one of A, B, C, D")
	// ErrInvalidPassword rejects a bad host login.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrGameIDExhausted is returned when game id generation keeps colliding.
	ErrGameIDExhausted = errors.New("could not allocate a unique game id")
)

// Code classifies errors for transport responses.
type Code string

const (
	CodeUnauthenticated Code = "unauthenticated"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeConflict        Code = "conflict"
	CodeValidation      Code = "validation"
	CodeInternal        Code = "internal"
)

// CodeOf maps an error onto the taxonomy. Unknown errors are internal.
func CodeOf(err error) Code {
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrHostRequired),
		errors.Is(err, ErrPlayerRequired),
		errors.Is(err, ErrInvalidPassword):
		return CodeUnauthenticated
	case errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrHostCannotJoin),
		errors.Is(err, ErrGameMismatch),
		errors.Is(err, ErrPlayerNotRegistered):
		return CodeForbidden
	case errors.Is(err, ErrGameNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrCellNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAlreadyCompleted),
		errors.Is(err, ErrAlreadyAnswered),
		errors.Is(err, ErrQuestionNotActive):
		return CodeConflict
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrInvalidChoice):
		return CodeValidation
	}
	return CodeInternal
}

// HTTPStatus maps a taxonomy code onto an HTTP status for the REST surface.
func HTTPStatus(code Code) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
