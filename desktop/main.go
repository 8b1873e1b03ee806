package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	cellSize         = 40
	headerHeight     = 80 // Taller header for multi-session stats
	boardLabelHeight = 20
	boardGap         = 30
	screenWidth      = 960
	screenHeight     = 720
	baseURL          = "http://localhost:8080"

	animationDuration = 150 * time.Millisecond // Smooth slide between cells
	blockedDuration   = 400 * time.Millisecond // Shake when a push is refused
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

// blockColors is the palette color tags map onto. Tags are usually
// single letters, so the first byte spreads them well enough.
var blockColors = []color.RGBA{
	{255, 100, 100, 255}, // Red
	{100, 100, 255, 255}, // Blue
	{100, 255, 100, 255}, // Green
	{255, 255, 100, 255}, // Yellow
	{255, 100, 255, 255}, // Magenta
	{100, 255, 255, 255}, // Cyan
	{255, 165, 0, 255},   // Orange
	{128, 0, 128, 255},   // Purple
	{255, 192, 203, 255}, // Pink
}

// The structs below mirror the server's JSON. The client decodes only
// what it draws, so fields it does not use are simply left out.

// Position locates a cell on one board
type Position struct {
	Board int `json:"board"`
	X     int `json:"x"`
	Y     int `json:"y"`
}

// Cell represents one grid cell of a board
type Cell struct {
	Terrain   string `json:"terrain"`
	GoalColor string `json:"goal_color"`
	Occupant  int    `json:"occupant"`
}

// Board represents one board of the puzzle, cells in row-major order
type Board struct {
	ID     int    `json:"id"`
	Key    string `json:"key"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Owner  int    `json:"owner"`
	Cells  []Cell `json:"cells"`
}

// Entity represents a player, block, box or infinite exit
type Entity struct {
	ID       int      `json:"id"`
	Kind     string   `json:"kind"`
	Pos      Position `json:"pos"`
	Color    string   `json:"color"`
	Flipped  bool     `json:"flipped"`
	Interior int      `json:"interior"`
	Target   int      `json:"target"`
	CloneSet int      `json:"clone_set"`
}

// Snapshot represents the full game state from the Deepbox server
type Snapshot struct {
	Name      string   `json:"name"`
	Root      int      `json:"root"`
	Player    int      `json:"player"`
	Boards    []Board  `json:"boards"`
	Entities  []Entity `json:"entities"`
	MoveCount int      `json:"move_count"`
	Moves     string   `json:"moves"`
	Goals     int      `json:"goals"`
	Satisfied int      `json:"satisfied"`
	Won       bool     `json:"won"`
}

// WSMessage represents the WebSocket message wrapper
type WSMessage struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// SessionData holds data for a single session
type SessionData struct {
	sessionID     string
	levelID       string
	state         *Snapshot
	wsConn        *websocket.Conn
	lastUpdate    time.Time
	prevPos       Position  // Previous player position for interpolation
	targetPos     Position  // Target player position for interpolation
	moveStartTime time.Time // When the move started
	animationTime float64   // Animation progress 0.0 to 1.0
	blockedTime   time.Time // When a refused push happened
	isBlocked     bool      // Currently showing the refused-push shake
}

// SessionListItem represents a session from the server
type SessionListItem struct {
	ID        string    `json:"id"`
	LevelID   string    `json:"level_id"`
	LevelName string    `json:"level_name"`
	State     *Snapshot `json:"state"`
}

// LevelListItem represents an available level
type LevelListItem struct {
	LevelID string `json:"level_id"`
	Name    string `json:"name"`
	Boards  int    `json:"boards"`
	Goals   int    `json:"goals"`
}

// Game represents the desktop game client
type Game struct {
	sessions         []*SessionData
	activeSession    int // index of currently active session
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool // session IDs selected to play
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionListItem
	availableLevels   []LevelListItem
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionLevel   string // selected level for new session
}

// NewGame creates a new game instance with initial sessions
func NewGame(sessionIDs []string) *Game {
	g := &Game{
		sessions:         make([]*SessionData, 0),
		activeSession:    0,
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen: &WelcomeScreen{
			availableSessions: make([]SessionListItem, 0),
			availableLevels:   make([]LevelListItem, 0),
			cursorPos:         0,
		},
	}

	// If session IDs provided, skip welcome screen and go straight to game
	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		// Load available sessions and levels for welcome screen
		g.loadWelcomeData()
	}

	return g
}

// addSession adds a new session to the game
func (g *Game) addSession(sessionID string) {
	session := &SessionData{
		sessionID:  sessionID,
		lastUpdate: time.Now(),
	}

	// If no session ID provided, create one on the same level as the
	// first session
	if sessionID == "" {
		levelID := ""
		if len(g.sessions) > 0 {
			levelID = g.sessions[0].levelID
		}
		if err := g.createSessionWithLevel(session, levelID); err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
	} else {
		for _, item := range g.welcomeScreen.availableSessions {
			if item.ID == sessionID {
				session.levelID = item.LevelID
				break
			}
		}
	}

	g.sessions = append(g.sessions, session)

	// Connect to WebSocket
	if err := g.connectWebSocket(session); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", session.sessionID, err)
	} else {
		// Start WebSocket listener
		go g.listenWebSocket(session)
	}

	// Initial state fetch
	g.fetchGameState(session)
}

// createSessionWithLevel creates a new game session on a specific level
func (g *Game) createSessionWithLevel(session *SessionData, levelID string) error {
	url := fmt.Sprintf("%s/api/v1/sessions", baseURL)

	payload := "{}"
	if levelID != "" {
		payload = fmt.Sprintf(`{"level":%q}`, levelID)
	}

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var result struct {
		ID      string `json:"id"`
		LevelID string `json:"level_id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse session response: %v (body: %s)", err, string(body))
	}
	if result.ID == "" {
		return fmt.Errorf("server refused session: %s", string(body))
	}

	session.sessionID = result.ID
	session.levelID = result.LevelID
	log.Printf("Created new session: %s (level: %s)", session.sessionID, session.levelID)
	return nil
}

// connectWebSocket establishes the WebSocket connection
func (g *Game) connectWebSocket(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	wsURL := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", session.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	session.wsConn = conn
	log.Printf("WebSocket connected for session %s", session.sessionID)
	return nil
}

// listenWebSocket listens for state pushes on the WebSocket
func (g *Game) listenWebSocket(session *SessionData) {
	defer func() {
		if session.wsConn != nil {
			session.wsConn.Close()
		}
	}()

	for {
		_, message, err := session.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			return
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		if wsMsg.Type == "error" {
			log.Printf("Server error for %s: %s", session.sessionID, wsMsg.Error)
			continue
		}
		if wsMsg.Snapshot == nil {
			continue
		}

		g.storeState(session, wsMsg.Snapshot)
	}
}

// fetchGameState gets the current game state from the server
func (g *Game) fetchGameState(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	url := fmt.Sprintf("%s/api/v1/sessions/%s/state", baseURL, session.sessionID)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(body))
	}

	g.storeState(session, &snap)
	return nil
}

// storeState swaps in a new snapshot and decides how the player sprite
// should get to its new cell. A move inside one board slides; a move
// that crosses boards (entering a box, being spat out of one) snaps,
// since interpolating across panels would sweep the sprite through
// unrelated boards.
func (g *Game) storeState(session *SessionData, snap *Snapshot) {
	g.stateMutex.Lock()
	defer g.stateMutex.Unlock()

	newPos, ok := playerPos(snap)
	oldPos, hadOld := playerPos(session.state)
	if ok && hadOld && newPos != oldPos && newPos.Board == oldPos.Board {
		session.prevPos = oldPos
		session.targetPos = newPos
		session.moveStartTime = time.Now()
		session.animationTime = 0.0
	} else if ok {
		session.prevPos = newPos
		session.targetPos = newPos
		session.animationTime = 1.0
	}

	session.state = snap
	session.lastUpdate = time.Now()
}

// playerPos finds the player entity's position in a snapshot
func playerPos(s *Snapshot) (Position, bool) {
	if s == nil {
		return Position{}, false
	}
	for _, e := range s.Entities {
		if e.ID == s.Player {
			return e.Pos, true
		}
	}
	return Position{}, false
}

// loadWelcomeData fetches available sessions and levels from the server
func (g *Game) loadWelcomeData() {
	g.welcomeScreen.loading = true
	g.welcomeScreen.errorMsg = ""

	// Fetch available sessions
	resp, err := http.Get(fmt.Sprintf("%s/api/v1/sessions", baseURL))
	if err != nil {
		g.welcomeScreen.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		g.welcomeScreen.loading = false
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var sessionsResp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	if err := json.Unmarshal(body, &sessionsResp); err == nil {
		g.welcomeScreen.availableSessions = sessionsResp.Sessions
	}

	// Fetch available levels
	resp, err = http.Get(fmt.Sprintf("%s/api/v1/levels", baseURL))
	if err != nil {
		g.welcomeScreen.errorMsg = fmt.Sprintf("Error loading levels: %v", err)
		g.welcomeScreen.loading = false
		return
	}
	defer resp.Body.Close()

	body, _ = io.ReadAll(resp.Body)
	var levels []LevelListItem
	if err := json.Unmarshal(body, &levels); err == nil {
		g.welcomeScreen.availableLevels = levels
	}

	g.welcomeScreen.loading = false
}

// createNewSessionFromWelcome creates a new session on the selected level
func (g *Game) createNewSessionFromWelcome() error {
	session := &SessionData{}
	if err := g.createSessionWithLevel(session, g.welcomeScreen.newSessionLevel); err != nil {
		return err
	}

	// Add to selected sessions
	g.selectedSessions[session.sessionID] = true

	// Reload session list
	g.loadWelcomeData()
	return nil
}

// startGameWithSelectedSessions transitions to the game screen
func (g *Game) startGameWithSelectedSessions() {
	if len(g.selectedSessions) == 0 {
		g.welcomeScreen.errorMsg = "Please select at least one session"
		return
	}

	for sessionID := range g.selectedSessions {
		g.addSession(sessionID)
	}

	g.currentScreen = ScreenGame
}

// sendCommand posts a command for the active session. Moves and undos
// come back through the WebSocket push; a refused push is reported only
// in the POST response, so the blocked flag is set from here.
func (g *Game) sendCommand(action string) error {
	if len(g.sessions) == 0 {
		return fmt.Errorf("no sessions available")
	}

	session := g.sessions[g.activeSession]
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	var endpoint, payload string
	switch action {
	case "undo", "restart":
		endpoint = fmt.Sprintf("%s/api/v1/sessions/%s/%s", baseURL, session.sessionID, action)
		payload = "{}"
	default:
		endpoint = fmt.Sprintf("%s/api/v1/sessions/%s/move", baseURL, session.sessionID)
		payload = fmt.Sprintf(`{"direction":%q}`, action)
	}

	resp, err := http.Post(endpoint, "application/json", strings.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var result struct {
		Outcome string `json:"outcome"`
	}
	if err := json.Unmarshal(body, &result); err == nil && result.Outcome == "illegal" {
		g.stateMutex.Lock()
		session.isBlocked = true
		session.blockedTime = time.Now()
		g.stateMutex.Unlock()
		return nil
	}

	if session.wsConn != nil {
		// State arrives through the push
		return nil
	}
	return g.fetchGameState(session)
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	// Refresh data with F5
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	// Navigate with arrow keys
	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		ws.cursorPos++
		if ws.cursorPos >= totalItems {
			ws.cursorPos = totalItems - 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		ws.cursorPos--
		if ws.cursorPos < 0 {
			ws.cursorPos = 0
		}
	}

	// Toggle selection with Space
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if ws.cursorPos < len(ws.availableSessions) {
			sessionID := ws.availableSessions[ws.cursorPos].ID
			g.selectedSessions[sessionID] = !g.selectedSessions[sessionID]
			if !g.selectedSessions[sessionID] {
				delete(g.selectedSessions, sessionID)
			}
		}
	}

	// Cycle through levels with Tab
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if len(ws.availableLevels) > 0 {
			currentIdx := -1
			for i, lvl := range ws.availableLevels {
				if lvl.LevelID == ws.newSessionLevel {
					currentIdx = i
					break
				}
			}
			currentIdx++
			if currentIdx >= len(ws.availableLevels) {
				ws.newSessionLevel = "" // No level (server default)
			} else {
				ws.newSessionLevel = ws.availableLevels[currentIdx].LevelID
			}
		}
	}

	// Create new session with N
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := g.createNewSessionFromWelcome(); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		}
	}

	// Start game with Enter
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.startGameWithSelectedSessions()
	}

	// Back to game screen with Escape (if sessions exist)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}

	return nil
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	if len(g.sessions) == 0 {
		return nil
	}

	// Update animation progress for all sessions
	g.stateMutex.Lock()
	for _, session := range g.sessions {
		if session.animationTime < 1.0 {
			elapsed := time.Since(session.moveStartTime)
			session.animationTime = float64(elapsed) / float64(animationDuration)
			if session.animationTime > 1.0 {
				session.animationTime = 1.0
			}
		}

		// End the refused-push shake after its duration
		if session.isBlocked && time.Since(session.blockedTime) > blockedDuration {
			session.isBlocked = false
		}
	}
	g.stateMutex.Unlock()

	// Poll sessions that have no WebSocket connection
	for _, session := range g.sessions {
		if session.wsConn == nil {
			if session.state == nil || time.Since(session.lastUpdate) > 500*time.Millisecond {
				if err := g.fetchGameState(session); err != nil {
					log.Printf("Error fetching state for %s: %v", session.sessionID, err)
				}
			}
		}
	}

	// Session switching with number keys (1-9)
	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			sessionIdx := int(i - ebiten.Key1)
			if sessionIdx < len(g.sessions) {
				g.activeSession = sessionIdx
				log.Printf("Switched to session %d: %s", sessionIdx+1, g.sessions[sessionIdx].sessionID)
			}
		}
	}

	// Add new session with N key
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if len(g.sessions) < 9 {
			g.addSession("")
			log.Printf("Added new session (total: %d)", len(g.sessions))
		}
	}

	// Handle keyboard input for the active session
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.sendCommand("up")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.sendCommand("down")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.sendCommand("left")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.sendCommand("right")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyU) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.sendCommand("undo")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sendCommand("restart")
	}

	// Return to welcome screen with Escape
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
	}

	return nil
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the welcome/session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen

	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== DEEPBOX - SESSION SELECT ===", 320, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	// Session list
	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20

	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	} else {
		for i, item := range ws.availableSessions {
			cursor := "  "
			if i == ws.cursorPos {
				cursor = "> "
			}

			checkbox := "[ ]"
			if g.selectedSessions[item.ID] {
				checkbox = "[X]"
			}

			progress := ""
			if item.State != nil {
				progress = fmt.Sprintf(" | Moves:%d Goals:%d/%d",
					item.State.MoveCount, item.State.Satisfied, item.State.Goals)
				if item.State.Won {
					progress += " SOLVED"
				}
			}

			line := fmt.Sprintf("%s%s %s | %s%s", cursor, checkbox, item.ID, item.LevelName, progress)

			ebitenutil.DebugPrintAt(screen, line, 20, y)
			y += 15
		}
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "─────────────────────────────────────────", 20, y)
	y += 20

	// New session creation
	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20

	levelDisplay := "default"
	if ws.newSessionLevel != "" {
		levelDisplay = ws.newSessionLevel
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Level: %s", levelDisplay), 20, y)
	y += 15

	ebitenutil.DebugPrintAt(screen, "  Available Levels:", 20, y)
	y += 15
	for _, lvl := range ws.availableLevels {
		marker := "  "
		if lvl.LevelID == ws.newSessionLevel {
			marker = "→ "
		}
		line := fmt.Sprintf("    %s%s - %s (%d boards, %d goals)",
			marker, lvl.LevelID, lvl.Name, lvl.Boards, lvl.Goals)
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "─────────────────────────────────────────", 20, y)
	y += 20

	selectedCount := len(g.selectedSessions)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", selectedCount), 20, y)
	y += 20

	// Controls
	y += 10
	ebitenutil.DebugPrintAt(screen, "CONTROLS:", 20, y)
	y += 20
	ebitenutil.DebugPrintAt(screen, "  ↑/↓      - Navigate sessions", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  SPACE    - Toggle session selection", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  TAB      - Cycle level for new session", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  N        - Create new session on selected level", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  ENTER    - Start game with selected sessions", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  F5       - Refresh session list", 20, y)
	y += 15
	if len(g.sessions) > 0 {
		ebitenutil.DebugPrintAt(screen, "  ESC      - Back to game", 20, y)
	}
}

// drawGameScreen renders the active session's puzzle
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	if len(g.sessions) == 0 {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}

	// Draw header with all session stats
	g.drawSessionStats(screen)

	// Sessions can run different levels, so only the active session's
	// boards are drawn. Each board gets its own panel.
	session := g.sessions[g.activeSession]
	if session.state == nil {
		ebitenutil.DebugPrintAt(screen, "Loading...", 20, headerHeight)
		return
	}
	snap := session.state

	const panelY = headerHeight + boardLabelHeight
	panelX := make(map[int]int, len(snap.Boards))
	boardKeys := make(map[int]string, len(snap.Boards))

	offsetX := 10
	for i := range snap.Boards {
		b := &snap.Boards[i]
		panelX[b.ID] = offsetX
		boardKeys[b.ID] = b.Key

		label := b.Key
		if b.ID == snap.Root {
			label += " (root)"
		}
		ebitenutil.DebugPrintAt(screen, label, offsetX, headerHeight+4)

		drawBoard(screen, b, offsetX, panelY)
		offsetX += b.Width*cellSize + boardGap
	}

	// Draw entities on top of their boards
	for _, e := range snap.Entities {
		x0, ok := panelX[e.Pos.Board]
		if !ok {
			continue
		}

		ex := float64(x0) + float64(e.Pos.X)*cellSize + 3
		ey := float64(panelY) + float64(e.Pos.Y)*cellSize + 3

		c := colorFor(e.Color)
		if e.ID == snap.Player {
			c = color.RGBA{235, 235, 235, 255}

			// Interpolate same-board moves for smooth motion
			t := session.animationTime
			if t < 1.0 && session.prevPos.Board == e.Pos.Board {
				fx := float64(session.prevPos.X)*(1.0-t) + float64(session.targetPos.X)*t
				fy := float64(session.prevPos.Y)*(1.0-t) + float64(session.targetPos.Y)*t
				ex = float64(x0) + fx*cellSize + 3
				ey = float64(panelY) + fy*cellSize + 3
			}

			// Refused push: shake and flash red, dampening over time
			if session.isBlocked {
				progress := time.Since(session.blockedTime).Seconds() / blockedDuration.Seconds()
				intensity := 3.0 * (1.0 - progress)
				ex += intensity * math.Sin(progress*40)
				ey += intensity * math.Cos(progress*40)

				flash := (1.0 - progress) * 0.7
				c.G = uint8(float64(c.G) * (1.0 - flash))
				c.B = uint8(float64(c.B) * (1.0 - flash))
			}
		}

		ebitenutil.DrawRect(screen, ex, ey, cellSize-6, cellSize-6, c)

		switch e.Kind {
		case "player":
			ebitenutil.DebugPrintAt(screen, "P", int(ex)+14, int(ey)+10)
		case "block":
			ebitenutil.DebugPrintAt(screen, e.Color, int(ex)+14, int(ey)+10)
		case "box":
			// Dark inset hints at the interior board
			ebitenutil.DrawRect(screen, ex+8, ey+8, cellSize-22, cellSize-22, color.RGBA{25, 25, 32, 255})
			if key := boardKeys[e.Interior]; key != "" {
				if len(key) > 3 {
					key = key[:3]
				}
				ebitenutil.DebugPrintAt(screen, key, int(ex)+9, int(ey)+10)
			}
		case "infinite_exit":
			ebitenutil.DrawRect(screen, ex+8, ey+8, cellSize-22, cellSize-22, color.RGBA{25, 25, 32, 255})
			ebitenutil.DebugPrintAt(screen, "oo", int(ex)+11, int(ey)+10)
		}

		if e.Flipped {
			ebitenutil.DrawRect(screen, ex, ey, 4, cellSize-6, color.RGBA{220, 220, 220, 255})
		}
	}

	// Footer controls
	ebitenutil.DebugPrintAt(screen, "1-9: Switch Session | N: New Session | Arrows/WASD: Move | U: Undo | R: Restart | ESC: Menu", 10, screenHeight-20)
}

// drawBoard renders one board's terrain and goal markers
func drawBoard(screen *ebiten.Image, b *Board, x0, y0 int) {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			cell := b.Cells[y*b.Width+x]
			px := float64(x0 + x*cellSize)
			py := float64(y0 + y*cellSize)

			ebitenutil.DrawRect(screen, px, py, cellSize-1, cellSize-1, getCellColor(cell.Terrain))

			switch cell.Terrain {
			case "player_goal":
				ebitenutil.DrawRect(screen, px+4, py+4, cellSize-9, cellSize-9, color.RGBA{0, 70, 70, 255})
				ebitenutil.DebugPrintAt(screen, "=", int(px)+4, int(py)+2)
			case "block_goal":
				ebitenutil.DrawRect(screen, px+4, py+4, cellSize-9, cellSize-9, dim(colorFor(cell.GoalColor)))
				ebitenutil.DebugPrintAt(screen, cell.GoalColor, int(px)+4, int(py)+2)
			}
		}
	}
}

// drawSessionStats draws stats for all sessions in the header
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	headerY := 5
	for idx, session := range g.sessions {
		y := headerY + (idx * 15)

		activeMarker := "   "
		if idx == g.activeSession {
			activeMarker = ">>>"
		}

		connStatus := "POLL"
		if session.wsConn != nil {
			connStatus = "WS"
		}

		if session.state == nil {
			info := fmt.Sprintf("%s [%d] %s [%s] loading...", activeMarker, idx+1, session.sessionID, connStatus)
			ebitenutil.DebugPrintAt(screen, info, 10, y)
			continue
		}

		info := fmt.Sprintf("%s [%d] %s [%s] %s MV:%d GOALS:%d/%d",
			activeMarker,
			idx+1,
			session.sessionID,
			connStatus,
			session.state.Name,
			session.state.MoveCount,
			session.state.Satisfied,
			session.state.Goals)

		if session.state.Won {
			info += " SOLVED!"
		}

		ebitenutil.DebugPrintAt(screen, info, 10, y)
	}
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// getCellColor returns the base color for each terrain type
func getCellColor(terrain string) color.Color {
	switch terrain {
	case "wall":
		return color.RGBA{96, 96, 108, 255}
	case "empty", "player_goal", "block_goal":
		return color.RGBA{38, 38, 48, 255}
	default:
		return color.RGBA{20, 20, 30, 255}
	}
}

// colorFor maps a color tag onto the palette. Uncolored boxes fall
// back to brown.
func colorFor(c string) color.RGBA {
	if c == "" {
		return color.RGBA{150, 100, 60, 255}
	}
	return blockColors[int(c[0])%len(blockColors)]
}

// dim darkens a palette color for goal cell markers
func dim(c color.RGBA) color.RGBA {
	return color.RGBA{c.R / 3, c.G / 3, c.B / 3, 255}
}

func main() {
	// Accept multiple session IDs as arguments
	sessionIDs := []string{}
	if len(os.Args) > 1 {
		sessionIDs = os.Args[1:]
	}

	game := NewGame(sessionIDs)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Deepbox - Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
