package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/mafiagame-go/internal/model"
)

// handshakeTimeout bounds the sign-in exchange on a fresh connection
const handshakeTimeout = 10 * time.Second

// Socket is a websocket connection speaking the game's event protocol
type Socket struct {
	conn *websocket.Conn
}

// DialSocket connects to the server's websocket endpoint
func DialSocket(serverURL string) (*Socket, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	return &Socket{conn: conn}, nil
}

// Send writes one event frame
func (s *Socket) Send(ev model.Inbound) error {
	data, err := model.EncodeInbound(ev)
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Read blocks until the next server event arrives
func (s *Socket) Read() (model.Outbound, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return model.DecodeOutbound(data)
}

// Authenticate sends a credential event and waits for the server's
// verdict: the connected event on success, the error event otherwise
func (s *Socket) Authenticate(credentials model.Inbound) (model.ConnectedEvent, error) {
	var connected model.ConnectedEvent

	if err := s.Send(credentials); err != nil {
		return connected, err
	}

	_ = s.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer func() { _ = s.conn.SetReadDeadline(time.Time{}) }()

	for {
		ev, err := s.Read()
		if err != nil {
			return connected, err
		}
		switch e := ev.(type) {
		case model.ConnectedEvent:
			return e, nil
		case model.ErrorEvent:
			return connected, fmt.Errorf("%s (%s)", e.Message, e.Code)
		}
	}
}

// Close announces an orderly disconnect and drops the connection
func (s *Socket) Close() error {
	_ = s.Send(model.DisconnectEvent{})
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return s.conn.Close()
}

// signIn picks the credential style for a fresh connection: an explicit
// handle and password when given, otherwise the saved session token
func signIn(s *Socket, handle, password string, register bool) (model.ConnectedEvent, error) {
	switch {
	case register:
		return s.Authenticate(model.RegisterEvent{Handle: model.Handle(handle), Password: password})
	case handle != "":
		return s.Authenticate(model.LoginEvent{Handle: model.Handle(handle), Password: password})
	case cfg.Token != "":
		return s.Authenticate(model.LoginEvent{Token: cfg.Token})
	default:
		return model.ConnectedEvent{}, fmt.Errorf("not signed in: pass --handle and --password, or register first")
	}
}
