package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeCreateRoom      MessageType = "create_room"
	MessageTypeJoinRoom        MessageType = "join_room"
	MessageTypeStartGame       MessageType = "start_game"
	MessageTypeStartNextRound  MessageType = "start_next_round"
	MessageTypeDrawFromCenter  MessageType = "draw_from_center"
	MessageTypeDiscardToCenter MessageType = "discard_to_center"
	MessageTypeSwapAll         MessageType = "swap_all"
	MessageTypePass            MessageType = "pass"
	MessageTypeKnock           MessageType = "knock"
	MessageTypeRequestState    MessageType = "request_state"
	MessageTypeLeaveRoom       MessageType = "leave_room"

	// Server to client messages
	MessageTypeRoomCreated  MessageType = "room_created"
	MessageTypeRoomJoined   MessageType = "room_joined"
	MessageTypeError        MessageType = "error"
	MessageTypeToast        MessageType = "toast"
	MessageTypeState        MessageType = "state"
	MessageTypePlayerJoined MessageType = "player_joined"
	MessageTypePlayerLeft   MessageType = "player_left"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
