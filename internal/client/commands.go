package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Command is one parsed prompt line.
type Command struct {
	Name string
	Args []string
}

// commandUsage lists the prompt commands in help order.
var commandUsage = []struct{ name, usage string }{
	{"create", "create [code]      open a room, optionally with your own code"},
	{"join", "join <code>        take a seat in a room"},
	{"start", "start              deal the first round"},
	{"next", "next               deal the next round"},
	{"draw", "draw <n>           take center card n"},
	{"discard", "discard <n>        put hand card n into the center"},
	{"swap", "swap               exchange your whole hand with the center"},
	{"pass", "pass               end your turn"},
	{"knock", "knock              call the last lap"},
	{"state", "state [code]       reload the table, taking your seat back"},
	{"leave", "leave              give up your seat"},
	{"help", "help               show this list"},
	{"quit", "quit               exit"},
}

// Help returns the prompt command reference.
func Help() string {
	lines := make([]string, len(commandUsage))
	for i, c := range commandUsage {
		lines[i] = "  " + c.usage
	}
	return strings.Join(lines, "\n")
}

// ParseCommand splits a prompt line into a command and its arguments.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	cmd := Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}

	for _, c := range commandUsage {
		if c.name == cmd.Name {
			return cmd, nil
		}
	}
	return Command{}, fmt.Errorf("unknown command %q, type help for a list", fields[0])
}

// index reads a one-based card position argument and returns it zero-based.
func (cmd Command) index() (int, error) {
	if len(cmd.Args) != 1 {
		return 0, fmt.Errorf("%s needs a card number", cmd.Name)
	}
	n, err := strconv.Atoi(cmd.Args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s: %q is not a card number", cmd.Name, cmd.Args[0])
	}
	return n - 1, nil
}

// roomID joins the arguments back together, since room codes may contain
// spaces ("join Kneipe Müller").
func (cmd Command) roomID() string {
	return strings.Join(cmd.Args, " ")
}

// Execute runs cmd against the server. help and quit are handled by the caller.
func (c *Client) Execute(ctx context.Context, cmd Command) error {
	switch cmd.Name {
	case "create":
		_, err := c.CreateRoom(ctx, cmd.roomID())
		return err

	case "join":
		if cmd.roomID() == "" {
			return fmt.Errorf("join needs a room code")
		}
		_, err := c.JoinRoom(ctx, cmd.roomID())
		return err

	case "start":
		return c.StartGame()

	case "next":
		return c.StartNextRound()

	case "draw":
		i, err := cmd.index()
		if err != nil {
			return err
		}
		return c.Draw(i)

	case "discard":
		i, err := cmd.index()
		if err != nil {
			return err
		}
		return c.Discard(i)

	case "swap":
		return c.SwapAll()

	case "pass":
		return c.Pass()

	case "knock":
		return c.Knock()

	case "state":
		roomID := c.Room()
		if id := cmd.roomID(); id != "" {
			roomID = id
		}
		if roomID == "" {
			return ErrNotInRoom
		}
		_, err := c.RequestState(ctx, roomID)
		return err

	case "leave":
		return c.LeaveRoom()
	}
	return fmt.Errorf("%s is not a server command", cmd.Name)
}
