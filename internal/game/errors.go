package game

import (
	"errors"
	"fmt"
)

// Code is a machine-readable rejection reason. The transport layer maps each
// code to a localized user-facing message.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Validation: malformed requests and out-of-range references
	CodeInvalidIndex  Code = "INVALID_INDEX"
	CodeInvalidAction Code = "INVALID_ACTION"

	// Conflict: the room's current state does not allow the request
	CodeNotYourTurn         Code = "NOT_YOUR_TURN"
	CodeRoomFull            Code = "ROOM_FULL"
	CodeGameAlreadyStarted  Code = "GAME_ALREADY_STARTED"
	CodeWrongStatus         Code = "WRONG_STATUS"
	CodeAlreadyKnocked      Code = "ALREADY_KNOCKED"
	CodeHandNotComplete     Code = "HAND_NOT_COMPLETE"
	CodeSwapNotAllowed      Code = "SWAP_NOT_ALLOWED"
	CodeHandFull            Code = "HAND_FULL"
	CodeCenterFull          Code = "CENTER_FULL"
	CodeNotEnoughPlayers    Code = "NOT_ENOUGH_PLAYERS"
	CodePlayerOut           Code = "PLAYER_OUT"
	CodePlayerAlreadySeated Code = "PLAYER_ALREADY_SEATED"
	CodeRoomAlreadyExists   Code = "ROOM_ALREADY_EXISTS"

	// Not found
	CodeRoomNotFound   Code = "ROOM_NOT_FOUND"
	CodePlayerNotFound Code = "PLAYER_NOT_FOUND"
	CodeNotInRoom      Code = "NOT_IN_ROOM"

	CodeInternal Code = "INTERNAL"
)

// Kind groups codes into the three rejection classes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Kind classifies the code.
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidIndex, CodeInvalidAction:
		return KindValidation
	case CodeNotYourTurn,
		CodeRoomFull,
		CodeGameAlreadyStarted,
		CodeWrongStatus,
		CodeAlreadyKnocked,
		CodeHandNotComplete,
		CodeSwapNotAllowed,
		CodeHandFull,
		CodeCenterFull,
		CodeNotEnoughPlayers,
		CodePlayerOut,
		CodePlayerAlreadySeated,
		CodeRoomAlreadyExists:
		return KindConflict
	case CodeRoomNotFound, CodePlayerNotFound, CodeNotInRoom:
		return KindNotFound
	default:
		return KindInternal
	}
}

// Error is a rejected request. A method returning an *Error has not changed
// any state.
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Kind returns the rejection class of the error's code.
func (e *Error) Kind() Kind {
	return e.Code.Kind()
}

// Is matches another *Error with the same code, so errors.Is works against
// the sentinel values below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError builds an *Error with a formatted detail.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotYourTurn        = &Error{Code: CodeNotYourTurn}
	ErrRoomFull           = &Error{Code: CodeRoomFull}
	ErrGameAlreadyStarted = &Error{Code: CodeGameAlreadyStarted}
	ErrRoomAlreadyExists  = &Error{Code: CodeRoomAlreadyExists}
	ErrRoomNotFound       = &Error{Code: CodeRoomNotFound}
	ErrPlayerNotFound     = &Error{Code: CodePlayerNotFound}
)

// CodeOf extracts the code from any error. Errors that are not *Error
// report CodeInternal; nil reports CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// KindOf returns the rejection class of err.
func KindOf(err error) Kind {
	return CodeOf(err).Kind()
}
