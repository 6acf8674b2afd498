package storage

import (
	"time"

	"github.com/google/uuid"
)

// Game is one match, live or finished.
type Game struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Variant     string     `gorm:"index" json:"variant"`
	TimeFormat  string     `json:"timeFormat"`
	StartBoard  string     `json:"startBoard"`
	Status      string     `json:"status"`
	Result      string     `json:"result,omitempty"`
	Cause       string     `json:"cause,omitempty"`
	Winner      string     `json:"winner,omitempty"`
	Turns       int        `json:"turns"`
	Active      bool       `gorm:"index" json:"active"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	LastSeen    time.Time  `json:"lastSeen"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"-"`
	Seats       []Seat     `json:"seats"`
	Moves       []Move     `json:"moves"`
}

// Seat records who played a color.
type Seat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	GameID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_game_color" json:"-"`
	Color     string    `gorm:"uniqueIndex:idx_game_color" json:"color"`
	Kind      string    `json:"kind"`
	Engine    string    `json:"engine,omitempty"`
	CreatedAt time.Time `json:"-"`
}

// Move stores a single ply.
type Move struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	GameID    uuid.UUID `gorm:"type:uuid;index" json:"-"`
	Number    int       `json:"number"`
	Color     string    `json:"color"`
	Src       string    `json:"src"`
	Dest      string    `json:"dest"`
	Captured  string    `json:"captured,omitempty"`
	ElapsedMS int64     `json:"elapsedMs"`
	DrawOffer bool      `json:"drawOffer,omitempty"`
	CreatedAt time.Time `json:"-"`
}
