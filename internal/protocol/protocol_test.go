package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"variantchess/internal/board"
	"variantchess/internal/game"
	"variantchess/internal/variant"
)

// engineServer upgrades and hands the server side of the socket to fn.
func engineServer(t *testing.T, fn func(c *Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := Upgrade(w, r)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer c.Close()
		fn(c)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestTaggedJSON(t *testing.T) {
	data, err := json.Marshal(OpponentMove(board.Move{Src: 12, Dest: 28}, "white"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"OpponentMove","move":{"src":12,"dest":28},"opponent":"white"}`
	if string(data) != want {
		t.Fatalf("got %s", data)
	}
	data, _ = json.Marshal(Resign())
	if string(data) != `{"type":"Resign"}` {
		t.Fatalf("got %s", data)
	}
}

func TestTimeFormatConversion(t *testing.T) {
	formats := []game.TimeFormat{
		game.Unlimited(),
		game.Increment(3*time.Minute, 2*time.Second),
		game.FixedPerMove(time.Second).WithDelay(100 * time.Millisecond),
	}
	for _, tf := range formats {
		if got := FromTimeFormat(tf).Game(); got != tf {
			t.Fatalf("%v came back as %v", tf, got)
		}
	}
}

func TestGameOverNamesWinner(t *testing.T) {
	m := GameOver(variant.Chess.Spec, game.Outcome{Result: game.Decisive, Cause: game.Checkmate, Winner: 1})
	if m.Winner == nil || *m.Winner != "black" || m.Cause != "checkmate" {
		t.Fatalf("GameOver = %+v", m)
	}
	m = GameOver(variant.Chess.Spec, game.Outcome{Result: game.Draw, Cause: game.Stalemate})
	if m.Winner != nil || m.Cause != "stalemate" {
		t.Fatalf("GameOver = %+v", m)
	}
}

func TestHandshake(t *testing.T) {
	url := engineServer(t, func(c *Conn) {
		if _, err := c.Expect(context.Background(), TypeEngineInit); err != nil {
			t.Errorf("engine: %v", err)
			return
		}
		_ = c.Send(Info(EngineInfo{Name: "mirror", Version: "1"}, map[string][]string{"chess": nil}))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()
	info, err := c.Handshake(ctx)
	if err != nil || info.Name != "mirror" {
		t.Fatalf("Handshake = %+v, %v", info, err)
	}
}

func TestReceiveHonoursContext(t *testing.T) {
	hold := make(chan struct{})
	url := engineServer(t, func(c *Conn) { <-hold })
	defer close(hold)

	c, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Receive(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Receive = %v", err)
	}
}
