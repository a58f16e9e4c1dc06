package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/gnpanschur/Schwimmen/internal/game"
	"github.com/gnpanschur/Schwimmen/internal/lobby"
	"github.com/gnpanschur/Schwimmen/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

type testEnv struct {
	srv       *Server
	http      *httptest.Server
	directory *lobby.Directory
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	directory := lobby.NewDirectory(testLogger(),
		lobby.WithGameOptions(game.WithRand(randutil.New(5))),
	)
	srv := NewServer("", directory, testLogger(), opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Stop()
		ts.Close()
	})
	return &testEnv{srv: srv, http: ts, directory: directory}
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func (e *testEnv) dial(t *testing.T, query string, header http.Header) *testClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(e.http.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(messageType MessageType, data any) {
	c.t.Helper()
	c.sendWithID(messageType, data, "")
}

func (c *testClient) sendWithID(messageType MessageType, data any, requestID string) {
	c.t.Helper()
	msg, err := NewMessage(messageType, data)
	require.NoError(c.t, err)
	msg.RequestID = requestID
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *testClient) read() *Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return &msg
}

// expect reads the next message and requires it to have the given type.
func (c *testClient) expect(messageType MessageType) *Message {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, messageType, msg.Type, "payload: %s", msg.Data)
	return msg
}

func (c *testClient) expectState() game.Snapshot {
	c.t.Helper()
	var snap game.Snapshot
	require.NoError(c.t, json.Unmarshal(c.expect(MessageTypeState).Data, &snap))
	return snap
}

func (c *testClient) expectError(code game.Code) ErrorData {
	c.t.Helper()
	var data ErrorData
	require.NoError(c.t, json.Unmarshal(c.expect(MessageTypeError).Data, &data))
	require.Equal(c.t, string(code), data.Code, "message: %s", data.Message)
	return data
}

func decode[T any](t *testing.T, msg *Message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))
	return v
}

func intPtr(v int) *int { return &v }

// seatTwo creates room STAMMTISCH with Anna and Ben and drains the join
// traffic.
func seatTwo(t *testing.T, env *testEnv) (anna, ben *testClient) {
	t.Helper()

	anna = env.dial(t, "", nil)
	anna.send(MessageTypeCreateRoom, CreateRoom{Name: "Anna", RoomID: "stammtisch", PlayerID: "p-anna"})
	anna.expect(MessageTypeRoomCreated)
	anna.expectState()

	ben = env.dial(t, "", nil)
	ben.send(MessageTypeJoinRoom, JoinRoom{RoomID: "stammtisch", Name: "Ben", PlayerID: "p-ben"})
	ben.expect(MessageTypeRoomJoined)
	ben.expectState()

	anna.expect(MessageTypePlayerJoined)
	anna.expectState()
	return anna, ben
}
