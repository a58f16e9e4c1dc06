package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gnpanschur/Schwimmen/internal/client"
	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/server"
)

// pushed lists the server messages shown in the terminal.
var pushed = []server.MessageType{
	server.MessageTypeState,
	server.MessageTypeToast,
	server.MessageTypePlayerJoined,
	server.MessageTypeRoomCreated,
	server.MessageTypeRoomJoined,
	server.MessageTypeError,
}

// Bind forwards what the server pushes to send, usually (*tea.Program).Send,
// and reports a lost connection as DisconnectedMsg.
func Bind(c *client.Client, send func(tea.Msg)) {
	for _, messageType := range pushed {
		c.AddEventHandler(messageType, func(msg *server.Message) {
			if m := translate(msg); m != nil {
				send(m)
			}
		})
	}
	go func() {
		<-c.Done()
		send(DisconnectedMsg{})
	}()
}

// translate turns a server message into a model message. It returns nil for
// messages with nothing to show.
func translate(msg *server.Message) tea.Msg {
	switch msg.Type {
	case server.MessageTypeState:
		var snap game.Snapshot
		if err := msg.Decode(&snap); err != nil {
			return nil
		}
		return StateMsg{Snapshot: snap}

	case server.MessageTypeToast:
		var data server.ToastData
		if err := msg.Decode(&data); err != nil {
			return nil
		}
		return NoticeMsg{Text: data.Message}

	case server.MessageTypePlayerJoined:
		var data server.PlayerJoinedData
		if err := msg.Decode(&data); err != nil {
			return nil
		}
		return NoticeMsg{Text: data.Name + " joined"}

	case server.MessageTypeRoomCreated:
		var data server.RoomCreatedData
		if err := msg.Decode(&data); err != nil {
			return nil
		}
		return NoticeMsg{Text: fmt.Sprintf("Room %s created, your player id is %s", data.RoomID, data.PlayerID)}

	case server.MessageTypeRoomJoined:
		var data server.RoomJoinedData
		if err := msg.Decode(&data); err != nil {
			return nil
		}
		return NoticeMsg{Text: fmt.Sprintf("Joined room %s, your player id is %s", data.RoomID, data.PlayerID)}

	case server.MessageTypeError:
		// replies to a request surface as the command's own error
		if msg.RequestID != "" {
			return nil
		}
		var data server.ErrorData
		if err := msg.Decode(&data); err != nil {
			return nil
		}
		return ErrorMsg{Text: data.Message}
	}
	return nil
}
