/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Followme sessions
//
// Every player owns one hub, found through the player cookie. The hub runs
// the player's game on a single goroutine: client actions and the playback
// scheduler's timed continuations are both handled by its run loop, and
// every change is pushed to all of the player's open tabs.
//
// - WebSocket per player: /ws
// - Players identified by a UUID cookie
// - Profiles loaded on first connection and saved after every change
// - Hubs without connections are reaped after the session timeout

package main

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/followme/game"
	"github.com/Seednode/followme/help"
	"github.com/Seednode/followme/playback"
)

// Messages coming from clients
type ClientMessage struct {
	Type        string            `json:"type"`                  // see handleAction
	Value       string            `json:"value,omitempty"`       // input
	Transcript  string            `json:"transcript,omitempty"`  // voice
	Name        string            `json:"name,omitempty"`        // save_preset / load_preset / delete_preset
	Setup       *game.Setup       `json:"setup,omitempty"`       // setup
	Preferences *game.Preferences `json:"preferences,omitempty"` // preferences
}

// StateMessage is the full snapshot a client renders from.
type StateMessage struct {
	Type    string             `json:"type"` // "state"
	Profile *game.Profile      `json:"profile"`
	Setup   game.Setup         `json:"setup"`
	Active  [][]playback.Token `json:"active"`
	Keys    []playback.Token   `json:"keys"`
	Labels  []string           `json:"labels"`
	Busy    bool               `json:"busy"`
}

// PresetsMessage lists the saved presets and the one matching the current settings.
type PresetsMessage struct {
	Type    string   `json:"type"` // "presets"
	Names   []string `json:"names"`
	Current string   `json:"current"`
}

type ControlMessage struct {
	Type     string `json:"type"` // "control"
	Control  string `json:"control"`
	Disabled bool   `json:"disabled"`
}

type LabelMessage struct {
	Type    string `json:"type"` // "label"
	Control string `json:"control"`
	Text    string `json:"text"`
}

type HighlightMessage struct {
	Type  string `json:"type"` // "highlight"
	Value string `json:"value"`
	Class string `json:"class"`
	On    bool   `json:"on"`
}

type OwnerMessage struct {
	Type   string `json:"type"` // "owner"
	Owner  int    `json:"owner"`
	Active bool   `json:"active"`
}

type SpeakMessage struct {
	Type string `json:"type"` // "speak"
	Text string `json:"text"`
}

type DialogMessage struct {
	Type    string `json:"type"` // "dialog"
	Title   string `json:"title"`
	Message string `json:"message"`
}

type HelpMessage struct {
	Type string    `json:"type"` // "help"
	Help help.Help `json:"help"`
}

// ErrorMessage is sent only to the client whose action was rejected.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

type action struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id      string
	cfg     *Config
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	actions  chan action
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	lastActive time.Time
	connected  int

	controller *game.Controller

	// Mirrors of the scheduler's control state, replayed to new tabs.
	disabled map[playback.Control]bool
	label    string
}

func newHub(cfg *Config, id string, profile *game.Profile, store game.Store) *Hub {
	h := &Hub{
		id:         id,
		cfg:        cfg,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		actions:    make(chan action),
		tasks:      make(chan func(), 16),
		done:       make(chan struct{}),
		lastActive: time.Now(),
		disabled:   make(map[playback.Control]bool),
		label:      playback.IdleGlyph,
	}

	h.controller = game.NewController(profile, game.Options{
		ID:        id,
		Store:     store,
		After:     h.after,
		Surface:   h,
		BaseDelay: cfg.demoDelay,
		BaseFlash: cfg.flash,
		Logf: func(format string, args ...any) {
			logf(cfg, format, args...)
		},
	})

	return h
}

// after runs fn on the hub's loop once d has passed.
func (h *Hub) after(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case h.tasks <- fn:
		case <-h.done:
		}
	})
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

// idleSince reports when the hub was last used, and whether any tab is still open.
func (h *Hub) idleSince() (time.Time, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive, h.connected == 0
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.mu.Lock()
			h.connected = len(h.clients)
			h.lastActive = time.Now()
			h.mu.Unlock()

			h.sendTo(c, h.stateMessage())
			h.sendTo(c, h.presetsMessage())
			for _, ctl := range []playback.Control{playback.DemoControl, playback.KeysControl} {
				h.sendTo(c, ControlMessage{Type: "control", Control: ctl.String(), Disabled: h.disabled[ctl]})
			}
			h.sendTo(c, LabelMessage{Type: "label", Control: playback.DemoControl.String(), Text: h.label})

		case c := <-h.unreg:
			h.drop(c)
			h.touch()

		case a := <-h.actions:
			h.touch()
			h.handleAction(a)

		case fn := <-h.tasks:
			fn()

		case <-h.done:
			for c := range h.clients {
				h.drop(c)
				_ = c.conn.Close()
			}
			return
		}
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	close(c.send)

	h.mu.Lock()
	h.connected = len(h.clients)
	h.mu.Unlock()
}

func (h *Hub) sendTo(c *Client, msg any) {
	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		h.drop(c)
	}
}

func (h *Hub) broadcast(msg any) {
	for c := range h.clients {
		h.sendTo(c, msg)
	}
}

func (h *Hub) stateMessage() StateMessage {
	// Messages are encoded on the write pumps, so they carry a copy.
	p := h.controller.Profile().Clone()
	in := p.Settings.CurrentInput

	keys := in.Keys()
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = in.SpokenLabel(k)
	}

	return StateMessage{
		Type:    "state",
		Profile: p,
		Setup:   p.SetupOf(),
		Active:  p.Current().Active(p.Settings.CurrentMode),
		Keys:    keys,
		Labels:  labels,
		Busy:    h.controller.Busy(),
	}
}

func (h *Hub) presetsMessage() PresetsMessage {
	p := h.controller.Profile()

	return PresetsMessage{
		Type:    "presets",
		Names:   p.PresetNames(),
		Current: p.MatchingPreset(),
	}
}

func (h *Hub) handleAction(a action) {
	c := h.controller
	msg := a.msg

	var err error

	switch msg.Type {
	case "input":
		err = c.Input(playback.Token(msg.Value))
	case "backspace":
		err = c.Backspace()
	case "clear_all":
		err = c.ClearAll()
	case "play_demo":
		if c.Busy() {
			err = game.ErrBusy
		} else {
			c.PlayDemo()
		}
	case "reset_rounds":
		err = c.ResetRounds()
	case "restore_defaults":
		err = c.RestoreDefaults()
	case "setup":
		if msg.Setup == nil {
			err = game.ErrInvalidSetup
		} else {
			err = c.ApplySetup(*msg.Setup)
		}
	case "preferences":
		if msg.Preferences != nil {
			c.ApplyPreferences(*msg.Preferences)
		}
	case "voice":
		err = c.Voice(msg.Transcript)
	case "help":
		hm, herr := help.Build(help.ParamsOf(c.Profile()))
		if herr != nil {
			err = herr
		} else {
			h.sendTo(a.client, HelpMessage{Type: "help", Help: hm})
		}
	case "save_preset":
		err = c.SavePreset(msg.Name)
	case "load_preset":
		err = c.LoadPreset(msg.Name)
	case "delete_preset":
		err = c.DeletePreset(msg.Name)
	default:
		// ignore unknown types
	}

	if err != nil && !errors.Is(err, game.ErrNothingToUndo) {
		logf(h.cfg, "GAME: Rejected %s from %s: %v", msg.Type, h.id, err)
		h.sendTo(a.client, ErrorMessage{Type: "error", Message: err.Error()})
	}
}

func (h *Hub) SetControlDisabled(ctl playback.Control, disabled bool) {
	h.disabled[ctl] = disabled
	h.broadcast(ControlMessage{Type: "control", Control: ctl.String(), Disabled: disabled})
}

func (h *Hub) SetControlLabel(ctl playback.Control, text string) {
	if ctl == playback.DemoControl {
		h.label = text
	}
	h.broadcast(LabelMessage{Type: "label", Control: ctl.String(), Text: text})
}

// ApplyHighlight reports a miss for values that have no key on the
// current keypad.
func (h *Hub) ApplyHighlight(value playback.Token, class string) bool {
	if !h.controller.Profile().Settings.CurrentInput.Accepts(value) {
		return false
	}

	h.broadcast(HighlightMessage{Type: "highlight", Value: string(value), Class: class, On: true})
	return true
}

func (h *Hub) RemoveHighlight(value playback.Token, class string) {
	h.broadcast(HighlightMessage{Type: "highlight", Value: string(value), Class: class, On: false})
}

func (h *Hub) ApplyOwnerActiveStyle(owner int) {
	h.broadcast(OwnerMessage{Type: "owner", Owner: owner, Active: true})
}

func (h *Hub) RestoreOwnerOriginalStyle(owner int) {
	h.broadcast(OwnerMessage{Type: "owner", Owner: owner, Active: false})
}

// Speak asks the browsers to speak text; they do so asynchronously.
func (h *Hub) Speak(text string) error {
	h.broadcast(SpeakMessage{Type: "speak", Text: text})
	return nil
}

func (h *Hub) ShowInfoDialog(title, message string) {
	h.broadcast(DialogMessage{Type: "dialog", Title: title, Message: message})
}

func (h *Hub) RefreshDisplay() {
	h.broadcast(h.stateMessage())
	h.broadcast(h.presetsMessage())
}

var _ playback.Surface = (*Hub)(nil)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const playerCookieName = "followme_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// SessionManager holds one hub per connected player.
type SessionManager struct {
	cfg   *Config
	store game.Store

	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	stopReaper  chan struct{}
}

func newSessionManager(cfg *Config, store game.Store) *SessionManager {
	sm := &SessionManager{
		cfg:         cfg,
		store:       store,
		hubs:        make(map[string]*Hub),
		idleTimeout: cfg.sessionTimeout,
		stopReaper:  make(chan struct{}),
	}
	if sm.idleTimeout > 0 {
		go sm.reaperLoop()
	}
	return sm
}

func (sm *SessionManager) getHub(playerID string) (*Hub, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if hub, ok := sm.hubs[playerID]; ok {
		return hub, nil
	}

	profile, err := sm.store.Load(playerID)
	if err != nil {
		return nil, err
	}

	hub := newHub(sm.cfg, playerID, profile, sm.store)
	sm.hubs[playerID] = hub
	go hub.run()

	logf(sm.cfg, "SESSION: Started session for %s", playerID)

	return hub, nil
}

// reaperLoop periodically removes hubs that have had no connections for longer than idleTimeout.
func (sm *SessionManager) reaperLoop() {
	ticker := time.NewTicker(sm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-sm.stopReaper:
			return
		case <-ticker.C:
			sm.reap(time.Now().Add(-sm.idleTimeout))
		}
	}
}

func (sm *SessionManager) reap(cutoff time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for id, hub := range sm.hubs {
		last, empty := hub.idleSince()

		if empty && last.Before(cutoff) {
			delete(sm.hubs, id)
			hub.stop()

			logf(sm.cfg, "SESSION: Reaped idle session for %s", id)
		}
	}
}

// Close ends every session.
func (sm *SessionManager) Close() {
	close(sm.stopReaper)

	sm.mu.Lock()
	defer sm.mu.Unlock()

	for id, hub := range sm.hubs {
		delete(sm.hubs, id)
		hub.stop()
	}
}

// WebSocket handler that picks the hub based on the player cookie
func serveWS(cfg *Config, sm *SessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		playerID := getOrSetPlayerID(w, r)

		hub, err := sm.getHub(playerID)
		if err != nil {
			logf(cfg, "SESSION: Failed to load profile for %s: %v", playerID, err)
			http.Error(w, "unable to load profile", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, w.Header())
		if err != nil {
			logf(cfg, "SESSION: Upgrade failed for %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 64),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.actions <- action{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
