package protocol

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	maxFrameSize = 64 << 10
)

// ErrUnexpected is returned when the peer answers with the wrong message type.
var ErrUnexpected = errors.New("unexpected message")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Conn is a message-oriented websocket. One goroutine may Receive while
// others Send.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// Dial connects to an engine at url (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return wrap(ws), nil
}

// Upgrade turns an HTTP request into a Conn.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return wrap(ws), nil
}

func wrap(ws *websocket.Conn) *Conn {
	ws.SetReadLimit(maxFrameSize)
	return &Conn{ws: ws}
}

// Send writes one message.
func (c *Conn) Send(m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(m); err != nil {
		return fmt.Errorf("send %s: %w", m.Type, err)
	}
	return nil
}

// Receive reads one message, giving up when ctx is done. A Conn whose
// Receive was interrupted this way is unusable afterwards.
func (c *Conn) Receive(ctx context.Context) (Message, error) {
	deadline, _ := ctx.Deadline()
	_ = c.ws.SetReadDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		_ = c.ws.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	var m Message
	if err := c.ws.ReadJSON(&m); err != nil {
		// Read deadlines only ever come from ctx.
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			<-ctx.Done()
			return Message{}, ctx.Err()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Message{}, ctxErr
		}
		return Message{}, fmt.Errorf("receive: %w", err)
	}
	return m, nil
}

// Expect receives one message and fails unless it has type t.
func (c *Conn) Expect(ctx context.Context, t Type) (Message, error) {
	m, err := c.Receive(ctx)
	if err != nil {
		return Message{}, err
	}
	if m.Type != t {
		return m, fmt.Errorf("%w: got %s, want %s", ErrUnexpected, m.Type, t)
	}
	return m, nil
}

// Handshake sends EngineInit and waits for the engine's EngineInfo.
func (c *Conn) Handshake(ctx context.Context) (EngineInfo, error) {
	if err := c.Send(EngineInit()); err != nil {
		return EngineInfo{}, err
	}
	m, err := c.Expect(ctx, TypeEngineInfo)
	if err != nil {
		return EngineInfo{}, fmt.Errorf("handshake: %w", err)
	}
	if m.Info == nil {
		return EngineInfo{}, fmt.Errorf("handshake: %w: EngineInfo without info", ErrUnexpected)
	}
	return *m.Info, nil
}

// Close sends a close frame and releases the socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.mu.Unlock()
	return c.ws.Close()
}
