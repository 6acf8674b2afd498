package match

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"variantchess/internal/board"
	"variantchess/internal/game"
	"variantchess/internal/logging"
	"variantchess/internal/source"
	"variantchess/internal/storage"
	"variantchess/internal/variant"
	"variantchess/pkg/utils"
)

const persistTimeout = 5 * time.Second

func (m *Match) run(ctx context.Context) {
	defer close(m.done)
	if _, err := m.game.Run(ctx); err != nil {
		logging.Debugf("match %s stopped: %v", m.ID, err)
	}
}

// Stop cancels a running match and waits for its goroutine. It is safe to call twice.
func (m *Match) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

// Done is closed once the match goroutine exits.
func (m *Match) Done() <-chan struct{} { return m.done }

// Finished reports whether the match has an outcome.
func (m *Match) Finished() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.outcome != nil
}

// Outcome returns the result once finished.
func (m *Match) Outcome() (game.Outcome, bool) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.outcome == nil {
		return game.Outcome{}, false
	}
	return *m.outcome, true
}

// OnMove snapshots the position for readers and persists the ply.
func (m *Match) OnMove(g *game.Game, p game.Ply) {
	b := g.Board()
	spec := m.Variant.Spec
	next := board.Color((int(p.Color) + 1) % m.Variant.Players())

	m.Mu.Lock()
	m.board = b
	m.toMove = next
	m.moves = append(m.moves, b.MoveString(p.Move))
	m.clocks = g.Clocks()
	number := len(m.moves)
	m.signalLocked()
	m.Mu.Unlock()

	row := storage.Move{
		GameID:    m.Key,
		Number:    number,
		Color:     spec.ColorName(p.Color),
		Src:       b.Grid().Name(p.Move.Src),
		Dest:      b.Grid().Name(p.Move.Dest),
		ElapsedMS: p.Elapsed.Milliseconds(),
		DrawOffer: p.OfferDraw,
	}
	if !p.Captured.IsEmpty() {
		row.Captured = spec.PieceName(p.Captured.Type)
	}
	turns, now := g.Turns(), time.Now()
	m.persist(func(ctx context.Context) error {
		if err := m.store.RecordMove(ctx, row); err != nil {
			return err
		}
		return m.store.SaveGameState(ctx, m.Key, storage.GameStateUpdate{Turns: &turns, LastSeen: &now})
	})
	m.Broadcast()
}

// OnFinish records the outcome, tells remote engines and notifies watchers.
func (m *Match) OnFinish(g *game.Game, o game.Outcome) {
	now := time.Now()
	m.Mu.Lock()
	m.outcome = &o
	m.clocks = g.Clocks()
	m.LastSeen = now
	m.signalLocked()
	m.Mu.Unlock()

	res := storage.Result{
		Status: "finished",
		Result: o.Result.String(),
		Cause:  o.Cause.String(),
		Turns:  g.Turns(),
	}
	if o.Result == game.Decisive {
		res.Winner = m.Variant.Spec.ColorName(o.Winner)
	}
	m.persist(func(ctx context.Context) error { return m.store.CompleteGame(ctx, m.Key, res, now) })
	m.closeRemotes(o)
	m.Broadcast()
}

func (m *Match) signalLocked() {
	close(m.changed)
	m.changed = make(chan struct{})
}

// Changed returns a channel closed at the next move or at the finish.
func (m *Match) Changed() <-chan struct{} {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.changed
}

func (m *Match) closeRemotes(o game.Outcome) {
	for _, s := range m.Seats {
		if s.remote == nil {
			continue
		}
		if err := s.remote.GameOver(m.Variant, o); err != nil {
			logging.Warn("engine notification failed", "match", m.ID, "engine", s.Engine, "err", err)
		}
	}
}

// dropRemotes tells remote engines an unfinished match is gone.
func (m *Match) dropRemotes() {
	for _, s := range m.Seats {
		if s.remote == nil {
			continue
		}
		if err := s.remote.Close(); err != nil {
			logging.Warn("engine shutdown notice failed", "match", m.ID, "engine", s.Engine, "err", err)
		}
	}
}

func (m *Match) persist(fn func(ctx context.Context) error) {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logging.Warn("persist failed", "match", m.ID, "err", err)
	}
}

// Touch updates the last seen timestamp for a match
func (m *Match) Touch() {
	m.Mu.Lock()
	m.LastSeen = time.Now()
	m.Mu.Unlock()
}

// SeatColor returns the color held by token.
func (m *Match) SeatColor(token string) (board.Color, bool) {
	for i, s := range m.Seats {
		if s.human != nil && utils.SameToken(s.Token, token) {
			return board.Color(i), true
		}
	}
	return 0, false
}

// Play relays a human seat's move or resignation into the game.
func (m *Match) Play(ctx context.Context, req MoveRequest) error {
	c, ok := m.SeatColor(req.Token)
	if !ok {
		return ErrBadSeat
	}
	h := m.Seats[c].human
	m.Touch()
	if req.Resign {
		changed := m.Changed()
		if err := h.Resign(ctx); err != nil {
			return err
		}
		select {
		case <-changed:
		case <-ctx.Done():
		}
		return nil
	}

	m.Mu.Lock()
	b := m.board
	turn := m.toMove
	finished := m.outcome != nil
	m.Mu.Unlock()
	if finished {
		return game.ErrFinished
	}
	if turn != c {
		return source.ErrNotYourTurn
	}
	mv, err := b.ParseMove(req.Move)
	if err != nil {
		return fmt.Errorf("%w: %v", source.ErrIllegalMove, err)
	}
	changed := m.Changed()
	if err := h.Submit(ctx, mv, req.OfferDraw); err != nil {
		return err
	}
	select {
	case <-changed:
	case <-ctx.Done():
	}
	return nil
}

// StateLocked returns the current match state (must be called with lock held)
func (m *Match) StateLocked() State {
	spec := m.Variant.Spec
	st := State{
		Kind:     "state",
		ID:       m.ID,
		Variant:  m.Variant.Name(),
		Board:    m.board.Rows(),
		Turn:     spec.ColorName(m.toMove),
		Moves:    append([]string{}, m.moves...),
		Time:     m.Format.String(),
		LastSeen: m.LastSeen.UnixMilli(),
		Watchers: len(m.Watchers),
	}
	if m.Variant == variant.Chess {
		st.FEN, _ = variant.ToFEN(&m.board, m.toMove)
	}
	for i, c := range m.clocks {
		st.Clocks = append(st.Clocks, ClockView{
			Color:       spec.ColorName(board.Color(i)),
			RemainingMS: c.Remaining.Milliseconds(),
			Timed:       c.Timed,
		})
	}
	st.Status = m.statusLocked()
	return st
}

func (m *Match) statusLocked() string {
	if m.outcome == nil {
		return ""
	}
	o := *m.outcome
	spec := m.Variant.Spec
	switch o.Result {
	case game.Decisive:
		return fmt.Sprintf("%s wins by %s", spec.ColorName(o.Winner), o.Cause)
	case game.Draw:
		return "draw by " + o.Cause.String()
	}
	return "aborted"
}

// ClientStateLocked is StateLocked as seen by the holder of token.
func (m *Match) ClientStateLocked(token string) ClientState {
	cs := ClientState{State: m.StateLocked(), Role: "spectator"}
	if c, ok := m.SeatColor(token); ok {
		name := m.Variant.Spec.ColorName(c)
		cs.Color = &name
		cs.Role = "player"
	}
	return cs
}

// Broadcast sends the current state to all watchers
func (m *Match) Broadcast() {
	m.Mu.Lock()
	state := m.StateLocked()
	data, _ := json.Marshal(state)
	for ch := range m.Watchers {
		select {
		case ch <- data:
		default:
		}
	}
	m.Mu.Unlock()
}

// AddWatcher adds a new watcher channel
func (m *Match) AddWatcher(ch chan []byte) {
	m.Mu.Lock()
	m.Watchers[ch] = struct{}{}
	m.Mu.Unlock()
}

// RemoveWatcher removes a watcher channel
func (m *Match) RemoveWatcher(ch chan []byte) {
	m.Mu.Lock()
	delete(m.Watchers, ch)
	m.Mu.Unlock()
}
