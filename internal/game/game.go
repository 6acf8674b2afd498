// Package game drives a match between move-sources: turn order, clocks and adjudication.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"variantchess/internal/board"
	"variantchess/internal/logging"
	"variantchess/internal/variant"
)

// Decision is a move-source's reply.
type Decision struct {
	Move      board.Move
	OfferDraw bool
}

// Input is everything a move-source sees when asked for a move. Board and
// History are copies the source may keep or mutate.
type Input struct {
	Board       board.Board
	Color       board.Color
	MoveStart   time.Time
	FlagInstant time.Time // zero when untimed
	TimeFormat  TimeFormat
	Clocks      []Clock
	Variant     *variant.Variant
	History     []Ply
}

// MoveSource picks moves for one seat. Decide should return promptly once
// ctx is done; a source that does not is abandoned.
type MoveSource interface {
	Decide(ctx context.Context, in Input) (Decision, error)
}

// SourceFunc adapts a function to MoveSource.
type SourceFunc func(ctx context.Context, in Input) (Decision, error)

// Decide calls f.
func (f SourceFunc) Decide(ctx context.Context, in Input) (Decision, error) { return f(ctx, in) }

// Player is a seat: who decides and how much time is left.
type Player struct {
	Source MoveSource
	Clock  Clock
}

// Ply is one applied move.
type Ply struct {
	Color     board.Color
	Move      board.Move
	Captured  board.Square
	Elapsed   time.Duration
	OfferDraw bool
}

// Observer is notified synchronously from Advance.
type Observer interface {
	OnMove(g *Game, p Ply)
	OnFinish(g *Game, o Outcome)
}

// ObserverFuncs implements Observer with optional callbacks.
type ObserverFuncs struct {
	Move   func(g *Game, p Ply)
	Finish func(g *Game, o Outcome)
}

// OnMove calls f.Move when set.
func (f ObserverFuncs) OnMove(g *Game, p Ply) {
	if f.Move != nil {
		f.Move(g, p)
	}
}

// OnFinish calls f.Finish when set.
func (f ObserverFuncs) OnFinish(g *Game, o Outcome) {
	if f.Finish != nil {
		f.Finish(g, o)
	}
}

// Game is not safe for concurrent use; one goroutine drives it.
type Game struct {
	id        string
	variant   *variant.Variant
	board     board.Board
	players   []Player
	format    TimeFormat
	toMove    int
	first     int // index that opens every round
	turns     int
	history   []Ply
	offers    []bool
	state     State
	outcome   Outcome
	started   time.Time
	now       func() time.Time
	observers []Observer
	log       *slog.Logger
}

// Option configures New.
type Option func(*Game)

// WithID names the game in logs and observers.
func WithID(id string) Option { return func(g *Game) { g.id = id } }

// WithBoard starts from b instead of the variant's default position.
func WithBoard(b board.Board) Option { return func(g *Game) { g.board = b } }

// WithObserver registers o.
func WithObserver(o Observer) Option {
	return func(g *Game) { g.observers = append(g.observers, o) }
}

// WithNow replaces the clock used for time accounting.
func WithNow(now func() time.Time) Option { return func(g *Game) { g.now = now } }

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option { return func(g *Game) { g.log = l } }

// WithFirstMover hands the first move to c instead of color 0.
func WithFirstMover(c board.Color) Option { return func(g *Game) { g.toMove = int(c) } }

// New seats one source per color of v.
func New(v *variant.Variant, sources []MoveSource, tf TimeFormat, opts ...Option) (*Game, error) {
	if len(sources) != v.Players() {
		return nil, fmt.Errorf("%w: %s needs %d, got %d", ErrPlayerCount, v.Name(), v.Players(), len(sources))
	}
	g := &Game{
		variant: v,
		board:   v.Default(),
		format:  tf,
		offers:  make([]bool, len(sources)),
		now:     time.Now,
	}
	for _, s := range sources {
		g.players = append(g.players, Player{Source: s, Clock: tf.NewClock()})
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.toMove < 0 || g.toMove >= len(g.players) {
		return nil, fmt.Errorf("%w: first mover %d", ErrPlayerCount, g.toMove)
	}
	g.first = g.toMove
	if g.log == nil {
		g.log = logging.With("game", g.id, "variant", v.Name())
	}
	return g, nil
}

// ID returns the name given with WithID.
func (g *Game) ID() string { return g.id }

// Variant returns the board kind being played.
func (g *Game) Variant() *variant.Variant { return g.variant }

// State returns the lifecycle stage.
func (g *Game) State() State { return g.state }

// Outcome is meaningful once State is Finished.
func (g *Game) Outcome() Outcome { return g.outcome }

// ToMove returns the color asked by the next Advance.
func (g *Game) ToMove() board.Color { return board.Color(g.toMove) }

// Turns counts completed rounds, each opened by the first mover.
func (g *Game) Turns() int { return g.turns }

// Format returns the time control.
func (g *Game) Format() TimeFormat { return g.format }

// Started is the instant the first move was requested; zero before that.
func (g *Game) Started() time.Time { return g.started }

// Board returns a copy of the current position.
func (g *Game) Board() board.Board { return g.board }

// History returns a copy of the plies played so far.
func (g *Game) History() []Ply { return append([]Ply(nil), g.history...) }

// Clocks returns a copy of every player's clock.
func (g *Game) Clocks() []Clock {
	out := make([]Clock, len(g.players))
	for i, p := range g.players {
		out[i] = p.Clock
	}
	return out
}

// Run advances until the game finishes or ctx is cancelled.
func (g *Game) Run(ctx context.Context) (Outcome, error) {
	for g.state != Finished {
		if err := g.Advance(ctx); err != nil {
			return Outcome{}, err
		}
	}
	return g.outcome, nil
}

// Advance asks the player to move for one decision and applies it. It
// returns ctx.Err() without changing the game when ctx is cancelled.
func (g *Game) Advance(ctx context.Context) error {
	if g.state == Finished {
		return ErrFinished
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	idx := g.toMove
	color := board.Color(idx)
	p := &g.players[idx]
	clock := p.Clock
	g.format.prepare(&clock)

	start := g.now()
	in := Input{
		Board:      g.board,
		Color:      color,
		MoveStart:  start,
		TimeFormat: g.format,
		Clocks:     g.Clocks(),
		Variant:    g.variant,
		History:    g.History(),
	}
	in.Clocks[idx] = clock
	if clock.Timed {
		in.FlagInstant = start.Add(g.format.budget(clock))
	}

	dec, flagged, err := g.ask(ctx, p.Source, in, clock)
	if ctxErr := ctx.Err(); ctxErr != nil && !flagged {
		return ctxErr
	}

	if g.state == NotStarted {
		g.started = start
		g.state = Running
		g.log.Info("game started", "players", len(g.players), "time", g.format.String())
	}
	p.Clock = clock

	if flagged {
		p.Clock.Remaining = 0
		g.finish(g.against(color, Flag))
		return nil
	}
	if err != nil {
		if len(g.history) == 0 {
			g.finish(Outcome{Result: Aborted, Err: err})
			return nil
		}
		o := g.against(color, Error)
		if errors.Is(err, ErrResign) {
			o.Cause = Resign
		} else {
			o.Err = err
		}
		g.finish(o)
		return nil
	}

	elapsed := g.now().Sub(start)
	if g.format.charge(&p.Clock, elapsed) {
		p.Clock.Remaining = 0
		g.finish(g.against(color, Flag))
		return nil
	}

	if !g.variant.IsMoveSafe(&g.board, color, dec.Move) {
		o := g.against(color, IllegalMove)
		o.Move = dec.Move
		g.finish(o)
		return nil
	}

	ply := Ply{
		Color:     color,
		Move:      dec.Move,
		Captured:  g.board.Apply(dec.Move),
		Elapsed:   elapsed,
		OfferDraw: dec.OfferDraw,
	}
	g.history = append(g.history, ply)
	g.offers[idx] = dec.OfferDraw
	g.log.Debug("move", "color", g.variant.Spec.ColorName(color), "move", g.board.MoveString(dec.Move), "elapsed", elapsed)
	for _, o := range g.observers {
		o.OnMove(g, ply)
	}

	g.toMove = (idx + 1) % len(g.players)
	if g.toMove == g.first {
		g.turns++
	}
	if o, done := g.adjudicate(color, board.Color(g.toMove)); done {
		g.finish(o)
	}
	return nil
}

type reply struct {
	dec Decision
	err error
}

// ask runs the source under the move's deadline. flagged is true when the
// deadline passed before a usable reply arrived.
func (g *Game) ask(ctx context.Context, src MoveSource, in Input, clock Clock) (Decision, bool, error) {
	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if clock.Timed {
		callCtx, cancel = context.WithTimeout(ctx, g.format.budget(clock))
	}
	defer cancel()

	// Buffered so an abandoned source can still deliver and exit.
	ch := make(chan reply, 1)
	go func() {
		dec, err := src.Decide(callCtx, in)
		ch <- reply{dec, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Decision{}, true, nil
		}
		return r.dec, false, r.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return Decision{}, false, ctx.Err()
		}
		return Decision{}, true, nil
	}
}

// against builds a decisive outcome lost by c; the next color in turn order wins.
func (g *Game) against(c board.Color, cause Cause) Outcome {
	winner := board.Color((int(c) + 1) % len(g.players))
	return Outcome{Result: Decisive, Cause: cause, Winner: winner, Loser: c}
}

// adjudicate inspects the position after mover's ply with next to play.
func (g *Game) adjudicate(mover, next board.Color) (Outcome, bool) {
	b := &g.board
	if len(b.Royals(next)) == 0 {
		return Outcome{Result: Decisive, Cause: Other, Winner: mover, Loser: next}, true
	}
	agreed := true
	for _, offered := range g.offers {
		agreed = agreed && offered
	}
	if agreed {
		return Outcome{Result: Draw, Cause: DrawOffer}, true
	}
	royal := func(sq board.Square) bool {
		return !sq.IsEmpty() && b.Spec().Pieces[sq.Type].Royal
	}
	if b.Count(board.Occupied) == b.Count(royal) {
		return Outcome{Result: Draw, Cause: DeadPosition}, true
	}
	if !g.variant.HasLegalMove(b, next) {
		if g.variant.InCheck(b, next) {
			return Outcome{Result: Decisive, Cause: Checkmate, Winner: mover, Loser: next}, true
		}
		return Outcome{Result: Draw, Cause: Stalemate}, true
	}
	return Outcome{}, false
}

func (g *Game) finish(o Outcome) {
	g.state = Finished
	g.outcome = o
	attrs := []any{"result", o.Result.String(), "turns", g.turns, "plies", len(g.history)}
	if o.Cause != NoCause {
		attrs = append(attrs, "cause", o.Cause.String())
	}
	if o.Result == Decisive {
		attrs = append(attrs, "winner", g.variant.Spec.ColorName(o.Winner))
	}
	if o.Err != nil {
		attrs = append(attrs, "err", o.Err)
	}
	g.log.Info("game finished", attrs...)
	for _, obs := range g.observers {
		obs.OnFinish(g, o)
	}
}
