package server

import (
	"strings"
	"unicode/utf8"

	"github.com/gnpanschur/Schwimmen/internal/game"
)

// MaxNameLength bounds player display names, in runes.
const MaxNameLength = 24

// Action is one decoded client request.
type Action interface {
	Type() MessageType
	Validate() error
}

// RoomAction is an action addressed to an existing room.
type RoomAction interface {
	Action
	Room() string
}

// Client → Server Messages

type CreateRoom struct {
	Name     string `json:"name"`
	PlayerID string `json:"playerId,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
}

type JoinRoom struct {
	RoomID   string `json:"roomId"`
	Name     string `json:"name"`
	PlayerID string `json:"playerId,omitempty"`
}

type StartGame struct {
	RoomID string `json:"roomId"`
}

type StartNextRound struct {
	RoomID string `json:"roomId"`
}

type DrawFromCenter struct {
	RoomID      string `json:"roomId"`
	CenterIndex *int   `json:"centerIndex"`
}

type DiscardToCenter struct {
	RoomID    string `json:"roomId"`
	HandIndex *int   `json:"handIndex"`
}

type SwapAll struct {
	RoomID string `json:"roomId"`
}

type Pass struct {
	RoomID string `json:"roomId"`
}

type Knock struct {
	RoomID string `json:"roomId"`
}

type RequestState struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type LeaveRoom struct {
	RoomID string `json:"roomId"`
}

func (*CreateRoom) Type() MessageType      { return MessageTypeCreateRoom }
func (*JoinRoom) Type() MessageType        { return MessageTypeJoinRoom }
func (*StartGame) Type() MessageType       { return MessageTypeStartGame }
func (*StartNextRound) Type() MessageType  { return MessageTypeStartNextRound }
func (*DrawFromCenter) Type() MessageType  { return MessageTypeDrawFromCenter }
func (*DiscardToCenter) Type() MessageType { return MessageTypeDiscardToCenter }
func (*SwapAll) Type() MessageType         { return MessageTypeSwapAll }
func (*Pass) Type() MessageType            { return MessageTypePass }
func (*Knock) Type() MessageType           { return MessageTypeKnock }
func (*RequestState) Type() MessageType    { return MessageTypeRequestState }
func (*LeaveRoom) Type() MessageType       { return MessageTypeLeaveRoom }

func (a *JoinRoom) Room() string        { return a.RoomID }
func (a *StartGame) Room() string       { return a.RoomID }
func (a *StartNextRound) Room() string  { return a.RoomID }
func (a *DrawFromCenter) Room() string  { return a.RoomID }
func (a *DiscardToCenter) Room() string { return a.RoomID }
func (a *SwapAll) Room() string         { return a.RoomID }
func (a *Pass) Room() string            { return a.RoomID }
func (a *Knock) Room() string           { return a.RoomID }
func (a *RequestState) Room() string    { return a.RoomID }
func (a *LeaveRoom) Room() string       { return a.RoomID }

func (a *CreateRoom) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	a.PlayerID = strings.TrimSpace(a.PlayerID)
	return validateName(a.Name)
}

func (a *JoinRoom) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	a.PlayerID = strings.TrimSpace(a.PlayerID)
	if err := validateRoom(a.RoomID); err != nil {
		return err
	}
	return validateName(a.Name)
}

func (a *StartGame) Validate() error      { return validateRoom(a.RoomID) }
func (a *StartNextRound) Validate() error { return validateRoom(a.RoomID) }
func (a *SwapAll) Validate() error        { return validateRoom(a.RoomID) }
func (a *Pass) Validate() error           { return validateRoom(a.RoomID) }
func (a *Knock) Validate() error          { return validateRoom(a.RoomID) }
func (a *LeaveRoom) Validate() error      { return validateRoom(a.RoomID) }

func (a *DrawFromCenter) Validate() error {
	if err := validateRoom(a.RoomID); err != nil {
		return err
	}
	return validateIndex("centerIndex", a.CenterIndex)
}

func (a *DiscardToCenter) Validate() error {
	if err := validateRoom(a.RoomID); err != nil {
		return err
	}
	return validateIndex("handIndex", a.HandIndex)
}

func (a *RequestState) Validate() error {
	if err := validateRoom(a.RoomID); err != nil {
		return err
	}
	a.PlayerID = strings.TrimSpace(a.PlayerID)
	if a.PlayerID == "" {
		return game.NewError(game.CodeInvalidAction, "playerId is required")
	}
	return nil
}

func validateRoom(id string) error {
	if strings.TrimSpace(id) == "" {
		return game.NewError(game.CodeInvalidAction, "roomId is required")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return game.NewError(game.CodeInvalidAction, "name is required")
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return game.NewError(game.CodeInvalidAction, "name has %d characters, max %d", n, MaxNameLength)
	}
	return nil
}

func validateIndex(field string, idx *int) error {
	if idx == nil {
		return game.NewError(game.CodeInvalidAction, "%s is required", field)
	}
	if *idx < 0 {
		return game.NewError(game.CodeInvalidIndex, "%s must not be negative", field)
	}
	return nil
}

// DecodeAction turns an inbound message into a validated Action. Unknown
// types and malformed payloads are INVALID_ACTION errors.
func DecodeAction(msg *Message) (Action, error) {
	var action Action
	switch msg.Type {
	case MessageTypeCreateRoom:
		action = &CreateRoom{}
	case MessageTypeJoinRoom:
		action = &JoinRoom{}
	case MessageTypeStartGame:
		action = &StartGame{}
	case MessageTypeStartNextRound:
		action = &StartNextRound{}
	case MessageTypeDrawFromCenter:
		action = &DrawFromCenter{}
	case MessageTypeDiscardToCenter:
		action = &DiscardToCenter{}
	case MessageTypeSwapAll:
		action = &SwapAll{}
	case MessageTypePass:
		action = &Pass{}
	case MessageTypeKnock:
		action = &Knock{}
	case MessageTypeRequestState:
		action = &RequestState{}
	case MessageTypeLeaveRoom:
		action = &LeaveRoom{}
	default:
		return nil, game.NewError(game.CodeInvalidAction, "unknown message type %q", msg.Type)
	}

	if err := msg.Decode(action); err != nil {
		return nil, game.NewError(game.CodeInvalidAction, "failed to parse %s data: %v", msg.Type, err)
	}
	if err := action.Validate(); err != nil {
		return nil, err
	}
	return action, nil
}
