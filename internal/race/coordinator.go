package race

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Lobby represents a waiting room for a race.
type Lobby struct {
	Code      string
	Host      SessionHandle
	Joiner    SessionHandle
	CreatedAt time.Time
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // How long before an empty lobby expires
	TimeLimit     time.Duration // Maximum race duration (0 = unlimited)
	CleanupPeriod time.Duration // How often to clean up expired lobbies
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  2 * time.Minute,
		TimeLimit:     10 * time.Minute,
		CleanupPeriod: 30 * time.Second,
	}
}

// ResultSaver is an interface for saving race results.
// This lets the coordinator persist outcomes without depending on the
// storage package.
type ResultSaver interface {
	SaveRaceResult(result ResultData) error
}

// ResultData contains race result data for persistence.
type ResultData struct {
	MatchID        string
	Racer1Session  string
	Racer2Session  string
	Score1         int
	Score2         int
	StagesCleared1 int
	StagesCleared2 int
	WinnerSession  string
	EndReason      string
	DurationSecs   int
}

// Coordinator manages lobbies and active races.
type Coordinator struct {
	config      CoordinatorConfig
	sessions    *SessionRegistry
	resultSaver ResultSaver // Optional, can be nil

	mu      sync.RWMutex
	lobbies map[string]*Lobby // code -> lobby
	races   map[MatchID]*Race // matchID -> race

	// Track which session is in which lobby/race
	sessionLobby map[SessionID]string  // sessionID -> lobby code
	sessionRace  map[SessionID]MatchID // sessionID -> matchID

	// Message channel for async processing
	msgChan chan CoordinatorMessage
	done    chan struct{}
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry) *Coordinator {
	c := &Coordinator{
		config:       cfg,
		sessions:     sessions,
		lobbies:      make(map[string]*Lobby),
		races:        make(map[MatchID]*Race),
		sessionLobby: make(map[SessionID]string),
		sessionRace:  make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
	return c
}

// SetResultSaver sets the optional race result saver.
func (c *Coordinator) SetResultSaver(saver ResultSaver) {
	c.resultSaver = saver
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator.
func (c *Coordinator) Stop() {
	close(c.done)
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// processMessages handles incoming messages.
func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case CancelLobbyMsg:
		c.handleCancelLobby(m)
	case LeaveLobbyMsg:
		c.handleLeaveLobby(m)
	case LeaveRaceMsg:
		c.handleLeaveRace(m)
	case ProgressMsg:
		c.handleProgress(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	// Check if session is already in a lobby
	c.mu.Lock()
	if _, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		c.mu.Unlock()
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}

	// Generate unique code
	code := c.generateUniqueCode()

	lobby := &Lobby{
		Code:      code,
		Host:      session,
		CreatedAt: time.Now(),
	}

	c.lobbies[code] = lobby
	c.sessionLobby[msg.SessionID] = code
	c.mu.Unlock()

	session.Send(LobbyCreatedEvent{Code: code})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if session is already in a lobby
	if _, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}

	// Find lobby
	code := strings.ToUpper(msg.Code)
	lobby, exists := c.lobbies[code]
	if !exists {
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	}

	// Check if lobby is full
	if lobby.Joiner != nil {
		session.Send(LobbyErrorEvent{Message: "Lobby is full"})
		return
	}

	// Can't join your own lobby
	if lobby.Host.ID() == msg.SessionID {
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}

	// Add joiner
	lobby.Joiner = session
	c.sessionLobby[msg.SessionID] = code

	// Notify both racers
	lobby.Host.Send(LobbyJoinedEvent{
		Code:       code,
		Side:       Racer1,
		OpponentID: msg.SessionID,
	})
	session.Send(LobbyJoinedEvent{
		Code:       code,
		Side:       Racer2,
		OpponentID: lobby.Host.ID(),
	})

	// Start the race
	c.startRace(lobby)
}

func (c *Coordinator) startRace(lobby *Lobby) {
	// Must be called with lock held

	matchID := MatchID(fmt.Sprintf("race-%s-%d", lobby.Code, time.Now().UnixNano()))

	// Both racers run the dungeon from this seed, so the layouts match.
	seed := time.Now().UnixNano()

	race := NewRace(matchID, lobby.Code, seed, lobby.Host, lobby.Joiner, c.config.TimeLimit)

	// Track race
	c.races[matchID] = race
	hostID := lobby.Host.ID()
	joinerID := lobby.Joiner.ID()

	// Update session tracking
	delete(c.sessionLobby, hostID)
	delete(c.sessionLobby, joinerID)
	c.sessionRace[hostID] = matchID
	c.sessionRace[joinerID] = matchID

	// Remove lobby
	delete(c.lobbies, lobby.Code)

	// Notify racers
	lobby.Host.Send(RaceStartedEvent{
		MatchID: matchID,
		Side:    Racer1,
		Seed:    seed,
		Code:    lobby.Code,
	})
	lobby.Joiner.Send(RaceStartedEvent{
		MatchID: matchID,
		Side:    Racer2,
		Seed:    seed,
		Code:    lobby.Code,
	})

	// Start race loop
	go race.Run(func(result RaceResult) {
		c.handleRaceEnded(matchID, result)
	})
}

func (c *Coordinator) handleRaceEnded(matchID MatchID, result RaceResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	race, exists := c.races[matchID]
	if !exists {
		return
	}

	// Save race result if saver is configured
	if c.resultSaver != nil {
		winnerSession := ""
		if result.Winner == Racer1 {
			winnerSession = string(race.racer1Session.ID())
		} else if result.Winner == Racer2 {
			winnerSession = string(race.racer2Session.ID())
		}

		resultData := ResultData{
			MatchID:        string(matchID),
			Racer1Session:  string(race.racer1Session.ID()),
			Racer2Session:  string(race.racer2Session.ID()),
			Score1:         result.Report1.Score,
			Score2:         result.Report2.Score,
			StagesCleared1: result.Report1.StagesCleared,
			StagesCleared2: result.Report2.StagesCleared,
			WinnerSession:  winnerSession,
			EndReason:      result.Reason.String(),
			DurationSecs:   int(result.Duration / time.Second),
		}
		// Best effort save, don't block on error
		go func() {
			_ = c.resultSaver.SaveRaceResult(resultData) //nolint:errcheck // intentional fire-and-forget
		}()
	}

	// Clean up session tracking
	for _, sessionID := range []SessionID{race.racer1Session.ID(), race.racer2Session.ID()} {
		delete(c.sessionRace, sessionID)
	}

	// Remove race
	delete(c.races, matchID)

	// Notify racers
	endEvent := RaceEndedEvent{
		MatchID: matchID,
		Reason:  result.Reason,
		Winner:  result.Winner,
		Report1: result.Report1,
		Report2: result.Report2,
	}
	race.racer1Session.Send(endEvent)
	race.racer2Session.Send(endEvent)
}

func (c *Coordinator) handleCancelLobby(msg CancelLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[msg.Code]
	if !exists {
		return
	}

	// Only host can cancel
	if lobby.Host.ID() != msg.SessionID {
		return
	}

	// Notify joiner if present
	if lobby.Joiner != nil {
		lobby.Joiner.Send(RaceEndedEvent{
			Reason: RaceEndReasonHostLeft,
		})
		delete(c.sessionLobby, lobby.Joiner.ID())
	}

	delete(c.lobbies, msg.Code)
	delete(c.sessionLobby, msg.SessionID)
}

func (c *Coordinator) handleLeaveLobby(msg LeaveLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[msg.Code]
	if !exists {
		return
	}

	// If joiner is leaving
	if lobby.Joiner != nil && lobby.Joiner.ID() == msg.SessionID {
		lobby.Joiner = nil
		delete(c.sessionLobby, msg.SessionID)
		lobby.Host.Send(LobbyPlayerLeftEvent{Code: msg.Code})
		return
	}

	// If host is leaving, close lobby
	if lobby.Host.ID() == msg.SessionID {
		if lobby.Joiner != nil {
			lobby.Joiner.Send(RaceEndedEvent{Reason: RaceEndReasonHostLeft})
			delete(c.sessionLobby, lobby.Joiner.ID())
		}
		delete(c.lobbies, msg.Code)
		delete(c.sessionLobby, msg.SessionID)
	}
}

func (c *Coordinator) handleLeaveRace(msg LeaveRaceMsg) {
	c.mu.Lock()
	race, exists := c.races[msg.MatchID]
	c.mu.Unlock()

	if !exists {
		return
	}

	// Leaving mid-race forfeits
	race.RacerDisconnected(msg.SessionID)
}

func (c *Coordinator) handleProgress(msg ProgressMsg) {
	c.mu.RLock()
	race, exists := c.races[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}

	race.SubmitReport(msg.Racer, msg.Report)
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if in lobby
	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		if lobby, exists := c.lobbies[code]; exists {
			// If host disconnected
			if lobby.Host.ID() == msg.SessionID {
				if lobby.Joiner != nil {
					lobby.Joiner.Send(RaceEndedEvent{Reason: RaceEndReasonHostLeft})
					delete(c.sessionLobby, lobby.Joiner.ID())
				}
				delete(c.lobbies, code)
			} else if lobby.Joiner != nil && lobby.Joiner.ID() == msg.SessionID {
				// Joiner disconnected
				lobby.Joiner = nil
				lobby.Host.Send(LobbyPlayerLeftEvent{Code: code})
			}
		}
		delete(c.sessionLobby, msg.SessionID)
	}

	// Check if in race
	if matchID, inRace := c.sessionRace[msg.SessionID]; inRace {
		if race, exists := c.races[matchID]; exists {
			race.RacerDisconnected(msg.SessionID)
		}
	}
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredLobbies()
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredLobbies() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for code, lobby := range c.lobbies {
		// Only expire lobbies without joiners
		if lobby.Joiner == nil && now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
			delete(c.sessionLobby, lobby.Host.ID())
			delete(c.lobbies, code)
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4) // 4 bytes = 32 bits, base32 encodes to 8 chars, we take 6
	_, err := rand.Read(b)
	if err != nil {
		// Fallback to timestamp-based
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	// Use base32 encoding (A-Z, 2-7), take first 6 chars
	code := base32.StdEncoding.EncodeToString(b)[:6]
	return strings.ToUpper(code)
}

// GetLobby returns a lobby by code (for testing/debug).
func (c *Coordinator) GetLobby(code string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[strings.ToUpper(code)]
	return l, ok
}

// GetRace returns a race by ID (for testing/debug).
func (c *Coordinator) GetRace(id MatchID) (*Race, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.races[id]
	return r, ok
}

// LobbyCount returns the number of active lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// RaceCount returns the number of active races.
func (c *Coordinator) RaceCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.races)
}
