package server

import (
	"context"

	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/i18n"
	"github.com/gnpanschur/Schwimmen/internal/lobby"
	"github.com/gnpanschur/Schwimmen/internal/roomcode"
	"github.com/gnpanschur/Schwimmen/internal/telemetry"
)

// event is a room notification sent ahead of the state snapshot.
type event struct {
	messageType MessageType
	data        any

	// toasts are localized per recipient
	toastKey  string
	toastArgs []any

	skip game.PlayerID
}

func toast(key string, args ...any) event {
	return event{messageType: MessageTypeToast, toastKey: key, toastArgs: args}
}

// broadcast sends events and a per-recipient snapshot to every connection
// bound to the room. It must run on the room goroutine so that snapshots
// reach clients in the order the actions were applied.
func (s *Server) broadcast(g *game.Game, roomID string, events []event) {
	conns := s.roomConnections(roomID)
	for _, conn := range conns {
		viewer := conn.Player()
		for _, ev := range events {
			if ev.skip != "" && ev.skip == viewer {
				continue
			}
			if ev.toastKey != "" {
				conn.sendData(MessageTypeToast, ToastData{Message: conn.translator.Sprintf(ev.toastKey, ev.toastArgs...)}, "")
				continue
			}
			conn.sendData(ev.messageType, ev.data, "")
		}
		conn.sendData(MessageTypeState, g.Snapshot(viewer), "")
	}
	s.logger.Debug("Broadcasted state to room", "room", roomID, "status", g.Status(), "recipients", len(conns))
}

// dispatch decodes, validates and executes one inbound message.
func (s *Server) dispatch(ctx context.Context, c *Connection, msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.Player())

	action, err := DecodeAction(msg)
	if err != nil {
		c.sendError(err, msg.RequestID)
		return
	}

	roomID := c.Room()
	if ra, ok := action.(RoomAction); ok {
		roomID = roomcode.Normalize(ra.Room())
	}
	ctx, span := telemetry.StartAction(ctx, s.tracer, action.Type().String(), roomID, string(c.Player()))

	var code string
	err = s.handle(ctx, c, action, msg.RequestID)
	if err != nil {
		code = string(game.CodeOf(err))
		c.logger.Debug("Action rejected", "type", msg.Type, "room", roomID, "code", code, "error", err)
		c.sendError(err, msg.RequestID)
	}
	telemetry.EndAction(span, code, err)
}

func (s *Server) handle(ctx context.Context, c *Connection, action Action, requestID string) error {
	switch a := action.(type) {
	case *CreateRoom:
		return s.handleCreateRoom(ctx, c, a, requestID)
	case *JoinRoom:
		return s.handleJoinRoom(ctx, c, a, requestID)
	case *RequestState:
		return s.handleRequestState(ctx, c, a, requestID)
	case *LeaveRoom:
		return s.handleLeaveRoom(ctx, c, a)
	case RoomAction:
		return s.handleGameAction(ctx, c, a)
	}
	return game.NewError(game.CodeInvalidAction, "unhandled action %s", action.Type())
}

func (s *Server) playerID(requested string) game.PlayerID {
	if requested != "" {
		return game.PlayerID(requested)
	}
	return game.PlayerID(s.newID())
}

func (s *Server) handleCreateRoom(ctx context.Context, c *Connection, a *CreateRoom, requestID string) error {
	if c.Room() != "" {
		if err := s.leaveForNewRoom(ctx, c); err != nil {
			return err
		}
	}

	room, err := s.directory.CreateRoom(a.RoomID)
	if err != nil {
		return err
	}

	playerID := s.playerID(a.PlayerID)
	info := lobby.PlayerInfo{ConnID: c.ID(), Name: a.Name, ID: playerID}
	if _, err := s.directory.JoinRoom(ctx, room.ID(), info); err != nil {
		s.directory.RemoveEmptyRoom(ctx, room.ID())
		return err
	}

	c.Bind(room.ID(), playerID)
	c.logger.Info("Room created", "room", room.ID(), "player", playerID, "name", a.Name)
	c.sendData(MessageTypeRoomCreated, RoomCreatedData{RoomID: room.ID(), PlayerID: playerID}, requestID)

	return room.Do(ctx, func(g *game.Game) error {
		s.broadcast(g, room.ID(), nil)
		return nil
	})
}

func (s *Server) handleJoinRoom(ctx context.Context, c *Connection, a *JoinRoom, requestID string) error {
	if c.Room() != "" && c.Room() != roomcode.Normalize(a.RoomID) {
		if err := s.leaveForNewRoom(ctx, c); err != nil {
			return err
		}
	}

	playerID := s.playerID(a.PlayerID)
	info := lobby.PlayerInfo{ConnID: c.ID(), Name: a.Name, ID: playerID}
	room, err := s.directory.JoinRoom(ctx, a.RoomID, info)
	if err != nil {
		return err
	}

	c.Bind(room.ID(), playerID)
	c.sendData(MessageTypeRoomJoined, RoomJoinedData{RoomID: room.ID(), PlayerID: playerID}, requestID)

	return room.Do(ctx, func(g *game.Game) error {
		s.broadcast(g, room.ID(), []event{{
			messageType: MessageTypePlayerJoined,
			data:        PlayerJoinedData{Name: a.Name},
			skip:        playerID,
		}})
		return nil
	})
}

// handleRequestState hands a seat to this connection and sends it the
// current state, e.g. after a page reload.
func (s *Server) handleRequestState(ctx context.Context, c *Connection, a *RequestState, requestID string) error {
	room, ok := s.directory.Lookup(a.RoomID)
	if !ok {
		return game.NewError(game.CodeRoomNotFound, "room %s", roomcode.Normalize(a.RoomID))
	}

	playerID := game.PlayerID(a.PlayerID)
	return room.Do(ctx, func(g *game.Game) error {
		if err := g.RebindConnection(playerID, c.ID()); err != nil {
			return err
		}
		c.Bind(room.ID(), playerID)
		c.logger.Info("Connection rebound", "room", room.ID(), "player", playerID)
		c.sendData(MessageTypeState, g.Snapshot(playerID), requestID)
		return nil
	})
}

func (s *Server) handleLeaveRoom(ctx context.Context, c *Connection, a *LeaveRoom) error {
	if c.Room() == "" || c.Room() != roomcode.Normalize(a.RoomID) {
		return game.NewError(game.CodeNotInRoom, "not seated in room %s", roomcode.Normalize(a.RoomID))
	}
	return s.leave(ctx, c)
}

// leave removes the connection's player from its room, tells the others and
// deletes the room once it is empty.
func (s *Server) leave(ctx context.Context, c *Connection) error {
	roomID, playerID := c.Room(), c.Player()
	if roomID == "" {
		return game.NewError(game.CodeNotInRoom, "not seated in any room")
	}

	room, ok := s.directory.Lookup(roomID)
	if !ok {
		c.Unbind()
		return game.NewError(game.CodeRoomNotFound, "room %s", roomID)
	}

	err := room.Do(ctx, func(g *game.Game) error {
		p, ok := g.Player(playerID)
		if !ok {
			return game.NewError(game.CodePlayerNotFound, "player %s", playerID)
		}
		if err := g.RemovePlayer(playerID); err != nil {
			return err
		}
		c.Unbind()
		s.broadcast(g, roomID, []event{
			{messageType: MessageTypePlayerLeft, data: PlayerLeftData{Name: p.Name}},
			toast(i18n.ToastLeft, p.Name),
		})
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("Player left room", "room", roomID, "player", playerID)
	s.directory.RemoveEmptyRoom(ctx, roomID)
	return nil
}

// leaveForNewRoom releases the old seat before the connection moves on. A
// seat in a round still being played cannot be given up; other failures mean
// the seat is already gone.
func (s *Server) leaveForNewRoom(ctx context.Context, c *Connection) error {
	err := s.leave(ctx, c)
	if game.IsCode(err, game.CodeWrongStatus) {
		return err
	}
	return nil
}

// handleGameAction runs a turn or lifecycle action for the connection's seat.
func (s *Server) handleGameAction(ctx context.Context, c *Connection, a RoomAction) error {
	roomID := roomcode.Normalize(a.Room())
	if c.Room() == "" || c.Room() != roomID {
		return game.NewError(game.CodeNotInRoom, "not seated in room %s", roomID)
	}
	room, ok := s.directory.Lookup(roomID)
	if !ok {
		return game.NewError(game.CodeRoomNotFound, "room %s", roomID)
	}

	playerID := c.Player()
	return room.Do(ctx, func(g *game.Game) error {
		events, err := applyAction(g, playerID, a)
		if err != nil {
			return err
		}
		s.broadcast(g, roomID, events)
		return nil
	})
}
