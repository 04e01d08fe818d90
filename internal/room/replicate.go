package room

import "github.com/vovakirdan/tui-tetris/internal/games/tetris"

// Wrapped marks a command with where it came from. Locally originated
// commands are broadcast right before they execute, and so are their
// follow-ups; commands replayed from a peer are never sent again.
type Wrapped[C any] struct {
	Cmd   C
	Local bool
	// From is the peer that delivered a remote command.
	From string
}

// Message is one replicated command: exactly one field is set.
type Message struct {
	Unit *tetris.Command
	Room *RoomCommand
}

// Incoming is a message or connection event from the transport.
type Incoming struct {
	From   string
	Msg    Message
	Joined bool
	Left   bool
}

// Transport moves messages between instances. Implementations must deliver
// every peer's messages in the order that peer sent them.
type Transport interface {
	// Broadcast sends m to every connected instance.
	Broadcast(m Message)
	// SendTo sends m to one peer only.
	SendTo(peer string, m Message)
	// Poll returns everything received since the last call without blocking.
	Poll() []Incoming
	// Disconnect drops a peer that misbehaved.
	Disconnect(peer string, reason error)
	// Online reports whether this instance is part of a network game.
	Online() bool
}

// Offline is the Transport of a game without peers.
type Offline struct{}

func (Offline) Broadcast(Message)        {}
func (Offline) SendTo(string, Message)   {}
func (Offline) Poll() []Incoming         { return nil }
func (Offline) Disconnect(string, error) {}
func (Offline) Online() bool             { return false }
