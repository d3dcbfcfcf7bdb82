package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/mafiagame-go/internal/model"
)

// chatReplay is how many transcript lines to show when entering a room
const chatReplay = 10

const commandHelp = `  /rooms                     list open rooms
  /create <name> [key=val]   create a room (min=N max=N secret=S doctor twins)
  /join <code> [secret]      join a room
  /leave                     leave the current room
  /start                     start the game (owner only)
  /kill <handle>             night kill (don only)
  /heal <handle>             night save (doctor only)
  /vote <handle>             day elimination vote
  /help                      show this list
  /quit                      disconnect`

func newPlayCmd() *cobra.Command {
	var (
		handle   string
		password string
		register bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Connect and play interactively",
		Long: `play opens a live connection to the server and turns the terminal
into a game client. Anything you type is chat; everything else is a
slash command:

` + commandHelp + `

With no flags the saved session token signs you in. With --output json
every server event is echoed as one JSON line, which suits scripting.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(handle, password, register)
		},
	}

	cmd.Flags().StringVar(&handle, "handle", "", "Sign in with this handle (needs --password)")
	cmd.Flags().StringVar(&password, "password", "", "Password for --handle")
	cmd.Flags().BoolVar(&register, "register", false, "Register the handle instead of logging in")

	return cmd
}

func runPlay(handle, password string, register bool) error {
	socket, err := DialSocket(cfg.ServerURL)
	if err != nil {
		return err
	}
	defer func() { _ = socket.Close() }()

	connected, err := signIn(socket, handle, password, register)
	if err != nil {
		return err
	}
	if err := cfg.SaveToken(connected.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	printer := &eventPrinter{
		json: cfg.Output == "json",
		self: connected.Identity.Handle,
	}
	printer.print(connected)
	if !printer.json {
		fmt.Println("Type /help for commands.")
	}

	events := make(chan model.Outbound, 16)
	readErr := make(chan error, 1)
	go func() {
		for {
			ev, err := socket.Read()
			if err != nil {
				readErr <- err
				return
			}
			events <- ev
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case ev := <-events:
			if kicked := printer.print(ev); kicked {
				return nil
			}

		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				printer.note("server closed the connection")
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			ev, err := parseCommand(line)
			if err != nil {
				printer.note(err.Error())
				continue
			}
			if ev == nil {
				continue
			}
			if _, quit := ev.(model.DisconnectEvent); quit {
				return nil
			}
			if err := socket.Send(ev); err != nil {
				return fmt.Errorf("send failed: %w", err)
			}

		case <-sigCh:
			return nil
		}
	}
}

// parseCommand turns one input line into an event to send. A nil event
// with nil error means nothing to do; chat is the fallthrough.
func parseCommand(line string) (model.Inbound, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	if !strings.HasPrefix(line, "/") {
		return model.ChatEvent{Text: line}, nil
	}

	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/rooms":
		return model.ListRoomsEvent{}, nil

	case "/create":
		return parseCreate(args)

	case "/join":
		if len(args) < 1 || len(args) > 2 {
			return nil, fmt.Errorf("usage: /join <code> [secret]")
		}
		ev := model.JoinRoomEvent{RoomID: model.RoomID(strings.ToUpper(args[0]))}
		if len(args) == 2 {
			ev.Secret = args[1]
		}
		return ev, nil

	case "/leave":
		return model.LeaveRoomEvent{}, nil

	case "/start":
		return model.GameActionEvent{Verb: model.VerbStart}, nil

	case "/kill", "/heal", "/vote":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: %s <handle>", name)
		}
		verbs := map[string]model.Verb{
			"/kill": model.VerbKill,
			"/heal": model.VerbHeal,
			"/vote": model.VerbVote,
		}
		return model.GameActionEvent{Verb: verbs[name], Target: model.Handle(args[0])}, nil

	case "/help":
		fmt.Println(commandHelp)
		return nil, nil

	case "/quit":
		return model.DisconnectEvent{}, nil

	default:
		return nil, fmt.Errorf("unknown command %s", name)
	}
}

func parseCreate(args []string) (model.Inbound, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: /create <name> [min=N] [max=N] [secret=S] [doctor] [twins]")
	}

	var (
		ev        model.CreateRoomEvent
		nameParts []string
	)
	for _, arg := range args {
		key, value, isOption := strings.Cut(arg, "=")
		switch {
		case isOption && key == "min":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("min wants a number, got %q", value)
			}
			ev.MinPlayers = n
		case isOption && key == "max":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("max wants a number, got %q", value)
			}
			ev.MaxPlayers = n
		case isOption && key == "secret":
			ev.Secret = value
		case arg == "doctor":
			ev.Config.Doctor = true
		case arg == "twins":
			ev.Config.Twins = true
		case isOption:
			return nil, fmt.Errorf("unknown option %q", key)
		default:
			nameParts = append(nameParts, arg)
		}
	}
	ev.Name = strings.Join(nameParts, " ")
	return ev, nil
}

// eventPrinter renders server events for the interactive session.
// In json mode every event is echoed as its wire frame, one per line.
type eventPrinter struct {
	json bool
	self model.Handle

	lastRole model.Role
}

// print renders one event and reports whether the session is over
func (p *eventPrinter) print(ev model.Outbound) bool {
	_, kicked := ev.(model.KickedEvent)

	if p.json {
		if data, err := model.EncodeOutbound(ev); err == nil {
			fmt.Println(string(data))
		}
		return kicked
	}

	switch e := ev.(type) {
	case model.ConnectedEvent:
		fmt.Printf("* signed in as %s (wallet %d)\n", e.Identity.Handle, e.Identity.Wallet)

	case model.RoomListEvent:
		if len(e.Rooms) == 0 {
			fmt.Println("* no rooms open - /create one")
			break
		}
		fmt.Printf("* %d room(s) open:\n", len(e.Rooms))
		for _, r := range e.Rooms {
			locked := ""
			if r.HasSecret {
				locked = " [locked]"
			}
			fmt.Printf("    %s %q %d/%d%s\n", r.ID, r.Name, r.Players, r.MaxPlayers, locked)
		}

	case model.RoomJoinedEvent:
		p.lastRole = ""
		fmt.Printf("* joined %s %q\n", e.Room.ID, e.Room.Name)
		start := len(e.Room.Chat) - chatReplay
		if start < 0 {
			start = 0
		}
		for _, m := range e.Room.Chat[start:] {
			p.printChat(m)
		}
		p.printRoom(e.Room)

	case model.RoomUpdatedEvent:
		if e.Room.Game == nil {
			p.lastRole = ""
		}
		p.printRoom(e.Room)

	case model.ChatMessageEvent:
		p.printChat(e.Message)

	case model.GameUpdateEvent:
		p.printGame(e.Room)

	case model.ErrorEvent:
		fmt.Printf("! %s (%s)\n", e.Message, e.Code)

	case model.KickedEvent:
		fmt.Printf("* disconnected: %s\n", e.Reason)
	}

	return kicked
}

// note reports a client-side condition in the stream's format
func (p *eventPrinter) note(msg string) {
	if p.json {
		data, _ := json.Marshal(map[string]string{"type": "clientNote", "message": msg})
		fmt.Println(string(data))
		return
	}
	fmt.Printf("! %s\n", msg)
}

func (p *eventPrinter) printChat(m model.ChatMessageView) {
	if m.System {
		fmt.Printf("* %s\n", m.Text)
		return
	}
	fmt.Printf("<%s> %s\n", m.Sender, m.Text)
}

func (p *eventPrinter) printRoom(room model.RoomSnapshot) {
	if room.Game != nil {
		p.printGame(room)
		return
	}
	names := make([]string, 0, len(room.Roster))
	for _, m := range room.Roster {
		name := string(m.Handle)
		if m.Owner {
			name += "*"
		}
		names = append(names, name)
	}
	fmt.Printf("* %s %q %s (%d/%d): %s\n",
		room.ID, room.Name, room.Status, len(room.Roster), room.MaxPlayers,
		strings.Join(names, ", "))
}

func (p *eventPrinter) printGame(room model.RoomSnapshot) {
	g := room.Game
	if g == nil {
		p.printRoom(room)
		return
	}

	if room.Status == model.RoomStatusFinished {
		fmt.Printf("* game over: the %s wins\n", g.Winner)
		for _, m := range room.Roster {
			fate := "survived"
			if !m.Alive {
				fate = "dead"
			}
			fmt.Printf("    %s - %s, %s\n", m.Handle, m.Role, fate)
		}
		return
	}

	living := make([]string, 0, len(room.Roster))
	for _, m := range room.Roster {
		if m.Alive {
			living = append(living, string(m.Handle))
		}
	}
	fmt.Printf("* %s %d (%ds left) - alive: %s\n",
		g.Phase, g.Day, g.Countdown, strings.Join(living, ", "))
	if g.LastOutcome != "" {
		fmt.Printf("* %s\n", g.LastOutcome)
	}

	if role := p.ownRole(room); role != "" && role != p.lastRole {
		p.lastRole = role
		fmt.Printf("* you are the %s\n", role)
	}
}

func (p *eventPrinter) ownRole(room model.RoomSnapshot) model.Role {
	for _, m := range room.Roster {
		if m.Handle == p.self {
			return m.Role
		}
	}
	return ""
}
