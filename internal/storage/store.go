package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm DB. A nil *Store is valid and persists nothing.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// DB exposes the underlying gorm DB instance.
func (s *Store) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// GameStateUpdate represents a partial update to a game row.
type GameStateUpdate struct {
	Status      *string
	Result      *string
	Cause       *string
	Winner      *string
	Turns       *int
	Active      *bool
	LastSeen    *time.Time
	CompletedAt *time.Time
}

// NewGame describes a match at creation time.
type NewGame struct {
	ID         uuid.UUID
	Variant    string
	TimeFormat string
	StartBoard string
	Seats      []Seat
	Created    time.Time
}

// CreateGame inserts the game row and its seats.
func (s *Store) CreateGame(ctx context.Context, g NewGame) error {
	if s == nil {
		return nil
	}
	row := Game{
		ID:         g.ID,
		Variant:    g.Variant,
		TimeFormat: g.TimeFormat,
		StartBoard: g.StartBoard,
		Status:     "running",
		Active:     true,
		LastSeen:   g.Created,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
		for i := range g.Seats {
			g.Seats[i].GameID = g.ID
		}
		if len(g.Seats) == 0 {
			return nil
		}
		return tx.Create(&g.Seats).Error
	})
}

// SaveGameState applies the non-nil fields of upd to the game row.
func (s *Store) SaveGameState(ctx context.Context, id uuid.UUID, upd GameStateUpdate) error {
	if s == nil {
		return nil
	}
	cols := upd.columns()
	if len(cols) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&Game{}).Where("id = ?", id).Updates(cols).Error
}

func (u GameStateUpdate) columns() map[string]any {
	cols := make(map[string]any)
	put(cols, "status", u.Status)
	put(cols, "result", u.Result)
	put(cols, "cause", u.Cause)
	put(cols, "winner", u.Winner)
	put(cols, "turns", u.Turns)
	put(cols, "active", u.Active)
	put(cols, "last_seen", u.LastSeen)
	put(cols, "completed_at", u.CompletedAt)
	return cols
}

func put[T any](cols map[string]any, name string, v *T) {
	if v != nil {
		cols[name] = *v
	}
}

// RecordMove inserts a move row for the given game.
func (s *Store) RecordMove(ctx context.Context, m Move) error {
	if s == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

// Result of a finished game as persisted.
type Result struct {
	Status string
	Result string
	Cause  string
	Winner string
	Turns  int
}

// CompleteGame marks a game as finished.
func (s *Store) CompleteGame(ctx context.Context, id uuid.UUID, r Result, completedAt time.Time) error {
	if s == nil {
		return nil
	}
	active := false
	return s.SaveGameState(ctx, id, GameStateUpdate{
		Status:      &r.Status,
		Result:      &r.Result,
		Cause:       &r.Cause,
		Winner:      &r.Winner,
		Turns:       &r.Turns,
		Active:      &active,
		CompletedAt: &completedAt,
	})
}

// ForgetGame marks an unfinished game as abandoned.
func (s *Store) ForgetGame(ctx context.Context, id uuid.UUID, when time.Time) error {
	if s == nil {
		return nil
	}
	status := "abandoned"
	active := false
	return s.SaveGameState(ctx, id, GameStateUpdate{
		Status:      &status,
		Active:      &active,
		CompletedAt: &when,
	})
}

// LoadGame fetches a persisted game with its seats and moves in order.
func (s *Store) LoadGame(ctx context.Context, id uuid.UUID) (*Game, error) {
	if s == nil {
		return nil, ErrNotFound
	}
	var game Game
	err := s.db.WithContext(ctx).
		Preload("Seats").
		Preload("Moves", func(db *gorm.DB) *gorm.DB { return db.Order("number") }).
		First(&game, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// Stats represents aggregate counts for games.
type Stats struct {
	Started   int64 `json:"started"`
	Completed int64 `json:"completed"`
	Active    int64 `json:"active"`
}

// FetchStats aggregates counts for display on the home page.
func (s *Store) FetchStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&Game{}).Count(&stats.Started).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&Game{}).Where("active = ?", true).Count(&stats.Active).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&Game{}).Where("completed_at IS NOT NULL").Count(&stats.Completed).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
