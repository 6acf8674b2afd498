package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"variantchess/internal/board"
	"variantchess/internal/game"
	"variantchess/internal/logging"
	"variantchess/internal/metrics"
	"variantchess/internal/source"
	"variantchess/internal/storage"
	"variantchess/internal/variant"
	"variantchess/pkg/utils"
)

// NewHub creates a hub and starts its idle cleanup goroutine.
func NewHub(store *storage.Store, idleTTL time.Duration) *Hub {
	h := &Hub{
		Matches: make(map[string]*Match),
		store:   store,
		idleTTL: idleTTL,
		now:     time.Now,
	}
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			if n := h.Cleanup(); n > 0 {
				logging.Info("idle matches removed", "count", n)
			}
		}
	}()
	return h
}

// Cleanup drops matches idle for longer than the TTL, stopping those still
// running, and returns how many were removed.
func (h *Hub) Cleanup() int {
	now := h.now()
	var stale []*Match
	h.Mu.Lock()
	for id, m := range h.Matches {
		m.Mu.Lock()
		idle := now.Sub(m.LastSeen) > h.idleTTL
		m.Mu.Unlock()
		if idle {
			delete(h.Matches, id)
			stale = append(stale, m)
		}
	}
	h.Mu.Unlock()

	h.evict(stale, now)
	return len(stale)
}

// Close stops every live match, marking unfinished ones abandoned.
func (h *Hub) Close() {
	h.Mu.Lock()
	live := make([]*Match, 0, len(h.Matches))
	for id, m := range h.Matches {
		live = append(live, m)
		delete(h.Matches, id)
	}
	h.Mu.Unlock()
	h.evict(live, h.now())
}

func (h *Hub) evict(ms []*Match, now time.Time) {
	for _, m := range ms {
		finished := m.Finished()
		m.Stop()
		if !finished {
			m.dropRemotes()
			m.persist(func(ctx context.Context) error { return h.store.ForgetGame(ctx, m.Key, now) })
		}
	}
}

// Get returns the live match with the given id.
func (h *Hub) Get(id string) (*Match, error) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if m, ok := h.Matches[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Len returns the number of live matches.
func (h *Hub) Len() int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return len(h.Matches)
}

// Stats returns persisted totals, or live counts when persistence is off.
func (h *Hub) Stats(ctx context.Context) (storage.Stats, error) {
	if h.store == nil {
		n := int64(h.Len())
		return storage.Stats{Started: n, Active: n}, nil
	}
	return h.store.FetchStats(ctx)
}

// Archived loads a persisted match, finished or not.
func (h *Hub) Archived(ctx context.Context, id string) (*storage.Game, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	g, err := h.store.LoadGame(ctx, key)
	if storage.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return g, err
}

// Create seats the players, registers the match and starts it.
func (h *Hub) Create(ctx context.Context, req CreateRequest) (*Match, error) {
	if req.Variant == "" {
		req.Variant = variant.Chess.Name()
	}
	v, err := variant.Lookup(req.Variant)
	if err != nil {
		return nil, err
	}
	if len(req.Seats) != v.Players() {
		return nil, fmt.Errorf("%w: %s needs %d seats, got %d", game.ErrPlayerCount, v.Name(), v.Players(), len(req.Seats))
	}

	start, first := v.Default(), board.Color(0)
	if req.FEN != "" {
		if v != variant.Chess {
			return nil, ErrFENVariant
		}
		if start, first, err = variant.FromFEN(req.FEN); err != nil {
			return nil, err
		}
	}

	key := uuid.New()
	now := h.now()
	m := &Match{
		ID:       key.String(),
		Key:      key,
		Variant:  v,
		Format:   req.Format,
		Watchers: make(map[chan []byte]struct{}),
		LastSeen: now,
		Created:  now,
		board:    start,
		toMove:   first,
		store:    h.store,
		done:     make(chan struct{}),
		changed:  make(chan struct{}),
	}

	sources := make([]game.MoveSource, len(req.Seats))
	for i, kind := range req.Seats {
		seat, src, err := openSeat(ctx, kind, m.ID, req.Seed+int64(i))
		if err != nil {
			m.dropRemotes()
			return nil, fmt.Errorf("seat %s: %w", v.Spec.ColorName(board.Color(i)), err)
		}
		m.Seats = append(m.Seats, seat)
		sources[i] = src
	}

	g, err := game.New(v, sources, req.Format,
		game.WithID(m.ID),
		game.WithBoard(start),
		game.WithFirstMover(first),
		game.WithObserver(m),
		game.WithObserver(metrics.Observer{}),
	)
	if err != nil {
		m.dropRemotes()
		return nil, err
	}
	m.game = g
	m.clocks = g.Clocks()

	rec := storage.NewGame{
		ID:         key,
		Variant:    v.Name(),
		TimeFormat: req.Format.String(),
		StartBoard: strings.Join(start.Rows(), "/"),
		Created:    now,
	}
	for i, s := range m.Seats {
		rec.Seats = append(rec.Seats, storage.Seat{Color: v.Spec.ColorName(board.Color(i)), Kind: s.Kind, Engine: s.Engine})
	}
	m.persist(func(ctx context.Context) error { return h.store.CreateGame(ctx, rec) })
	metrics.Started(v.Name())

	h.Mu.Lock()
	h.Matches[m.ID] = m
	h.Mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.run(runCtx)
	logging.Debugf("match %s created: %s %v %s", m.ID, v.Name(), req.Seats, req.Format)
	return m, nil
}

func openSeat(ctx context.Context, kind, id string, seed int64) (Seat, game.MoveSource, error) {
	switch {
	case kind == "human":
		hu := source.NewHuman()
		return Seat{Kind: kind, Token: utils.RandomHex(16), human: hu}, hu, nil
	case strings.HasPrefix(kind, "ws://"), strings.HasPrefix(kind, "wss://"):
		r, err := source.DialRemote(ctx, kind, id)
		if err != nil {
			return Seat{}, nil, err
		}
		return Seat{Kind: "remote", Engine: kind, remote: r}, r, nil
	}
	src, err := source.New(kind, seed)
	if err != nil {
		return Seat{}, nil, err
	}
	return Seat{Kind: kind}, src, nil
}
