package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"variantchess/internal/game"
	"variantchess/internal/logging"
	"variantchess/internal/match"
	"variantchess/internal/source"
	"variantchess/internal/templates"
	"variantchess/internal/variant"
)

// moveTimeout bounds how long a move request waits for the game to apply it.
const moveTimeout = 10 * time.Second

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Hub     *match.Hub
	Default game.TimeFormat
	Version string
}

// NewHandler creates a new handler instance
func NewHandler(hub *match.Hub, def game.TimeFormat, version string) *Handler {
	return &Handler{Hub: hub, Default: def, Version: version}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/new", h.HandleNew)
	mux.HandleFunc("/sse/", h.HandleSSE)
	mux.HandleFunc("/move/", h.HandleMove)
	mux.HandleFunc("/state/", h.HandleState)
	mux.HandleFunc("/archive/", h.HandleArchive)
	mux.HandleFunc("/variants", h.HandleVariants)
	mux.HandleFunc("/healthz", h.HandleHealth)
	mux.HandleFunc("/", h.HandlePage)
	return mux
}

type newRequest struct {
	Variant string   `json:"variant"`
	Seats   []string `json:"seats"`
	Time    string   `json:"time"`
	Delay   string   `json:"delay"`
	FEN     string   `json:"fen"`
	Seed    int64    `json:"seed"`
}

// HandleNew creates a match. Form posts are redirected to the first human
// seat's page; JSON callers get the id and every seat token.
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "POST only"})
		return
	}
	isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")

	var body newRequest
	if isJSON {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body = newRequest{
			Variant: r.PostForm.Get("variant"),
			Seats:   r.PostForm["seat"],
			Time:    r.PostForm.Get("time"),
			Delay:   r.PostForm.Get("delay"),
			FEN:     strings.TrimSpace(r.PostForm.Get("fen")),
		}
		if s := r.PostForm.Get("seed"); s != "" {
			seed, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				http.Error(w, fmt.Sprintf("bad seed %q", s), http.StatusBadRequest)
				return
			}
			body.Seed = seed
		}
	}

	req, err := h.createRequest(body)
	if err == nil {
		var m *match.Match
		if m, err = h.Hub.Create(r.Context(), req); err == nil {
			tokens := map[string]string{}
			first := ""
			for i, s := range m.Seats {
				if s.Token == "" {
					continue
				}
				tokens[m.Variant.Spec.Colors[i]] = s.Token
				if first == "" {
					first = s.Token
				}
			}
			logging.Info("match created", "match", m.ID, "variant", m.Variant.Name(), "seats", body.Seats, "ip", ClientIP(r))
			if isJSON {
				WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": m.ID, "tokens": tokens})
				return
			}
			target := "/" + m.ID
			if first != "" {
				target += "?token=" + url.QueryEscape(first)
			}
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
	}
	if isJSON {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func (h *Handler) createRequest(body newRequest) (match.CreateRequest, error) {
	req := match.CreateRequest{Variant: body.Variant, Seats: body.Seats, FEN: body.FEN, Seed: body.Seed, Format: h.Default}
	if len(req.Seats) == 0 {
		req.Seats = []string{"human", "human"}
	}
	if body.Time != "" {
		f, err := game.ParseTimeFormat(body.Time)
		if err != nil {
			return req, err
		}
		req.Format = f
	}
	if body.Delay != "" {
		d, err := time.ParseDuration(body.Delay)
		if err != nil || d < 0 {
			return req, fmt.Errorf("%w: delay %q", game.ErrTimeFormat, body.Delay)
		}
		req.Format = req.Format.WithDelay(d)
	}
	return req, nil
}

// HandlePage serves the home page or a match page
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" || path == "index.html" {
		stats, err := h.Hub.Stats(r.Context())
		if err != nil {
			logging.Warn("stats unavailable", "err", err)
		}
		templates.WriteHomeHTML(w, templates.HomeData{
			Variants: variant.Names(),
			Stats:    stats,
			Live:     h.Hub.Len(),
		})
		return
	}
	m, err := h.Hub.Get(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	token := r.URL.Query().Get("token")
	if _, ok := m.SeatColor(token); !ok {
		token = ""
	}
	m.Touch()
	m.Mu.Lock()
	st := m.StateLocked()
	m.Mu.Unlock()
	templates.WriteGameHTML(w, templates.GameData{
		ID:      m.ID,
		Token:   token,
		Variant: st.Variant,
		Rows:    st.Board,
		Status:  st.Status,
		Turn:    st.Turn,
	})
}

// HandleSSE handles Server-Sent Events for real-time match updates
func (h *Handler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/sse/")
	m, err := h.Hub.Get(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	token := r.URL.Query().Get("token")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan []byte, 16)
	m.AddWatcher(ch)
	defer m.RemoveWatcher(ch)

	m.Mu.Lock()
	initial, _ := json.Marshal(m.ClientStateLocked(token))
	m.Mu.Unlock()

	_, _ = fmt.Fprintf(w, "data: %s\n\n", initial)
	flusher.Flush()

	m.Touch()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// heartbeat
			_, _ = w.Write([]byte("data: {}\n\n"))
			flusher.Flush()
			m.Touch()
		case msg := <-ch:
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(msg)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

// HandleMove relays a human seat's move, draw offer or resignation
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/move/")
	m, err := h.Hub.Get(id)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "unknown match"})
		return
	}

	var req match.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing token"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), moveTimeout)
	defer cancel()
	err = m.Play(ctx, req)

	m.Mu.Lock()
	state := m.ClientStateLocked(req.Token)
	m.Mu.Unlock()

	switch {
	case errors.Is(err, match.ErrBadSeat):
		WriteJSON(w, http.StatusForbidden, map[string]any{"ok": false, "error": err.Error()})
	case err != nil:
		if !errors.Is(err, source.ErrIllegalMove) && !errors.Is(err, source.ErrNotYourTurn) && !errors.Is(err, game.ErrFinished) {
			logging.Debugf("move on %s failed: %v", m.ID, err)
		}
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error(), "state": state})
	default:
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "state": state})
	}
}

// HandleState returns a match snapshot
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/state/")
	m, err := h.Hub.Get(id)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "unknown match"})
		return
	}
	m.Mu.Lock()
	state := m.ClientStateLocked(r.URL.Query().Get("token"))
	m.Mu.Unlock()
	WriteJSON(w, http.StatusOK, state)
}

// HandleArchive returns a persisted match with its seats and moves
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/archive/")
	g, err := h.Hub.Archived(r.Context(), id)
	switch {
	case errors.Is(err, match.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "unknown match"})
	case err != nil:
		logging.Warn("archive lookup failed", "match", id, "err", err)
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "storage unavailable"})
	default:
		WriteJSON(w, http.StatusOK, g)
	}
}

type variantInfo struct {
	Name    string   `json:"name"`
	Size    int      `json:"size"`
	Colors  []string `json:"colors"`
	Pieces  []string `json:"pieces"`
	Initial []string `json:"initial"`
}

// HandleVariants lists the playable variants
func (h *Handler) HandleVariants(w http.ResponseWriter, r *http.Request) {
	var out []variantInfo
	for _, name := range variant.Names() {
		v, err := variant.Lookup(name)
		if err != nil {
			continue
		}
		b := v.Default()
		info := variantInfo{Name: name, Size: v.SideLen(), Colors: v.Spec.Colors, Initial: b.Rows()}
		for _, p := range v.Spec.Pieces {
			info.Pieces = append(info.Pieces, p.Name)
		}
		out = append(out, info)
	}
	WriteJSON(w, http.StatusOK, out)
}

// HandleHealth reports liveness and the running build
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "version": h.Version, "live": h.Hub.Len()})
}

// ClientIP extracts the client IP from the request
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
