package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/bhajan/internal/catalog"
	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/tui/components"
	"github.com/tessro/bhajan/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelQueue
	PanelPlaylists
	PanelHistory
)

const panelCount = 4

const (
	searchDebounce = 300 * time.Millisecond
	volumeStep     = 0.05
	seekStep       = 10 * time.Second
	loadTimeout    = 30 * time.Second
	errorTTL       = 5 * time.Second
)

// Controller is the player surface the UI drives.
type Controller interface {
	core.Player
	LoadTrack(ctx context.Context, track core.Track) error
	SetCurrentIndex(index int) error
	ShowFullPlayer()
	HideFullPlayer()
}

// App holds the TUI application dependencies
type App struct {
	player      Controller
	source      catalog.Source
	refreshRate time.Duration
}

// NewApp creates a new TUI application. refreshRate paces redraws of
// time-based labels; state changes redraw immediately.
func NewApp(player Controller, source catalog.Source, refreshRate time.Duration) *App {
	if refreshRate <= 0 {
		refreshRate = 500 * time.Millisecond
	}
	return &App{player: player, source: source, refreshRate: refreshRate}
}

// Model is the main TUI model
type Model struct {
	app          *App
	width        int
	height       int
	focusedPanel Panel

	// State
	state     core.PlaybackState
	updates   chan core.PlaybackState
	playlists []catalog.Playlist
	active    string // ID of the playlist that built the queue

	// Components
	nowPlaying    *components.NowPlaying
	queueView     *components.Queue
	playlistsView *components.Playlists
	historyView   *components.History

	// Overlays
	showHelp bool

	// Search state
	showSearch    bool
	searchInput   textinput.Model
	searchResults []core.Track
	searchCursor  int
	searching     bool
	lastQuery     string
	searchErr     error

	// Transient status line
	lastError   error
	notice      string
	errorExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Search songs, artists, albums..."
	ti.CharLimit = 100
	ti.Width = 50

	return Model{
		app:           app,
		focusedPanel:  PanelNowPlaying,
		state:         app.player.State(),
		updates:       make(chan core.PlaybackState, 1),
		nowPlaying:    components.NewNowPlaying(),
		queueView:     components.NewQueue(),
		playlistsView: components.NewPlaylists(),
		historyView:   components.NewHistory(),
		searchInput:   ti,
	}
}

// Messages
type tickMsg time.Time
type stateMsg core.PlaybackState
type playlistsMsg []catalog.Playlist
type errMsg error
type noticeMsg string
type playlistLoadedMsg string

// Search messages
type searchDebounceMsg struct{ query string }
type searchResultsMsg struct {
	results []core.Track
	err     error
}

// subscribe forwards engine state into the model's channel. Only the
// latest snapshot is kept; a slow UI skips intermediate states.
func (m Model) subscribe() func() {
	ch := m.updates
	return m.app.player.Subscribe(func(s core.PlaybackState) {
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	})
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForState() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		playlists, err := m.app.source.Playlists(ctx)
		if err != nil {
			return errMsg(err)
		}
		return playlistsMsg(playlists)
	}
}

func (m Model) doSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if query == "" {
			return searchResultsMsg{results: nil}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		results, err := m.app.source.Search(ctx, query)
		if err != nil {
			return searchResultsMsg{err: err}
		}
		return searchResultsMsg{results: results}
	}
}

// playTracks replaces the queue with tracks and starts the first one.
func (m Model) playTracks(tracks []core.Track, start int, playlistID string) tea.Cmd {
	player := m.app.player
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		if err := player.LoadPlaylist(ctx, tracks, start); err != nil {
			return errMsg(err)
		}
		player.Play()
		return playlistLoadedMsg(playlistID)
	}
}

func (m Model) playPlaylist(playlist catalog.Playlist) tea.Cmd {
	source := m.app.source
	shuffle := m.state.Shuffle
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		tracks, err := source.PlaylistTracks(ctx, playlist.ID)
		if err != nil {
			return errMsg(err)
		}
		if len(tracks) == 0 {
			return noticeMsg(fmt.Sprintf("%s is empty", playlist.Name))
		}
		if shuffle {
			tracks = catalog.Shuffled(tracks)
		}
		return m.playTracks(tracks, 0, playlist.ID)()
	}
}

func (m Model) playQueueIndex(index int) tea.Cmd {
	player := m.app.player
	return func() tea.Msg {
		if err := player.SetCurrentIndex(index); err != nil {
			return errMsg(err)
		}
		state := player.State()
		if state.CurrentSong == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		if err := player.LoadTrack(ctx, *state.CurrentSong); err != nil {
			return errMsg(err)
		}
		player.Play()
		return nil
	}
}

func (m Model) skip(next bool) tea.Cmd {
	player := m.app.player
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		wasPlaying := player.State().IsPlaying
		step := player.SkipToPrevious
		if next {
			step = player.SkipToNext
		}
		if err := step(ctx); err != nil {
			return errMsg(err)
		}
		if wasPlaying {
			player.Play()
		}
		return nil
	}
}

func (m Model) copyURL() tea.Cmd {
	song := m.state.CurrentSong
	return func() tea.Msg {
		if !song.HasSource() {
			return nil
		}
		if err := clipboard.WriteAll(song.URL); err != nil {
			return errMsg(fmt.Errorf("copy to clipboard: %w", err))
		}
		return noticeMsg("Copied " + song.URL)
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.waitForState(),
		m.fetchPlaylists(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.expireStatus()
		return m, m.tick()

	case stateMsg:
		m.expireStatus()
		m.applyState(core.PlaybackState(msg))
		return m, m.waitForState()

	case playlistsMsg:
		m.playlists = msg
		return m, nil

	case playlistLoadedMsg:
		m.active = string(msg)
		return m, nil

	case errMsg:
		m.lastError = msg
		m.notice = ""
		m.errorExpiry = time.Now().Add(errorTTL)
		return m, nil

	case noticeMsg:
		m.lastError = nil
		m.notice = string(msg)
		m.errorExpiry = time.Now().Add(errorTTL)
		return m, nil

	case searchDebounceMsg:
		if msg.query == m.searchInput.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			m.searching = true
			return m, m.doSearch(msg.query)
		}

	case searchResultsMsg:
		m.searching = false
		m.searchResults = msg.results
		m.searchErr = msg.err
		m.searchCursor = 0
		return m, nil
	}

	// Forward other messages to textinput when search is active
	if m.showSearch {
		var inputCmd tea.Cmd
		m.searchInput, inputCmd = m.searchInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m *Model) expireStatus() {
	if time.Now().After(m.errorExpiry) {
		m.lastError = nil
		m.notice = ""
	}
}

// applyState records history on track changes and stores the snapshot.
func (m *Model) applyState(next core.PlaybackState) {
	prev := m.state
	m.state = next

	if next.CurrentSong == nil {
		return
	}
	if prev.CurrentSong != nil && prev.CurrentSong.ID == next.CurrentSong.ID {
		return
	}

	skipped := false
	if prev.CurrentSong != nil {
		if total := prev.EffectiveDuration(); total > 0 {
			skipped = prev.CurrentTime < total*95/100
		}
	}
	m.historyView.Record(*next.CurrentSong, skipped)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	// Search overlay
	if m.showSearch {
		return m.handleSearchKeyPress(msg)
	}

	// Normal mode
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "/":
		m.showSearch = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.searchResults = nil
		m.searchCursor = 0
		m.lastQuery = ""
		m.searchErr = nil
		return m, textinput.Blink

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil

	case "ctrl+r":
		return m, m.fetchPlaylists()
	}

	player := m.app.player

	// Playback controls
	switch msg.String() {
	case " ":
		player.TogglePlay()
		return m, nil
	case "x":
		player.Stop()
		return m, nil
	case "n":
		return m, m.skip(true)
	case "p":
		return m, m.skip(false)
	case "+", "=":
		player.SetVolume(m.state.Volume + volumeStep)
		return m, nil
	case "-":
		player.SetVolume(m.state.Volume - volumeStep)
		return m, nil
	case "right", "l":
		if m.focusedPanel == PanelNowPlaying {
			player.Seek(m.state.CurrentTime + seekStep)
		}
		return m, nil
	case "left", "h":
		if m.focusedPanel == PanelNowPlaying {
			player.Seek(max(m.state.CurrentTime-seekStep, 0))
		}
		return m, nil
	case "r":
		player.CycleRepeatMode()
		return m, nil
	case "s":
		player.ToggleShuffle()
		return m, nil
	case "f":
		if m.state.FullPlayerVisible {
			player.HideFullPlayer()
		} else {
			player.ShowFullPlayer()
		}
		return m, nil
	case "y":
		return m, m.copyURL()
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelQueue:
		switch msg.String() {
		case "j", "down":
			m.queueView.SelectNext(m.state.Queue.Len())
		case "k", "up":
			m.queueView.SelectPrev()
		case "enter":
			if m.state.Queue.InRange(m.queueView.Selected()) {
				return m, m.playQueueIndex(m.queueView.Selected())
			}
		case "d":
			if m.state.Queue.InRange(m.queueView.Selected()) {
				if err := player.RemoveFromQueue(m.queueView.Selected()); err != nil {
					return m, func() tea.Msg { return errMsg(err) }
				}
			}
		}
	case PanelPlaylists:
		switch msg.String() {
		case "j", "down":
			m.playlistsView.SelectNext(len(m.playlists))
		case "k", "up":
			m.playlistsView.SelectPrev()
		case "enter":
			if i := m.playlistsView.Selected(); i < len(m.playlists) {
				return m, m.playPlaylist(m.playlists[i])
			}
		}
	}

	return m, nil
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "esc":
		m.showSearch = false
		m.searchInput.Blur()
		return m, nil

	case "enter":
		if len(m.searchResults) > 0 && m.searchCursor < len(m.searchResults) {
			m.showSearch = false
			m.searchInput.Blur()
			results := m.searchResults
			if m.state.Shuffle {
				results = catalog.ShuffledFrom(results, m.searchCursor)
				return m, m.playTracks(results, 0, "")
			}
			return m, m.playTracks(results, m.searchCursor, "")
		}
		return m, nil

	case "up", "ctrl+p":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.searchCursor < len(m.searchResults)-1 {
			m.searchCursor++
		}
		return m, nil

	case "ctrl+q":
		if len(m.searchResults) > 0 && m.searchCursor < len(m.searchResults) {
			track := m.searchResults[m.searchCursor]
			m.showSearch = false
			m.searchInput.Blur()
			m.app.player.AddToQueue(track)
			return m, func() tea.Msg { return noticeMsg("Queued " + track.Name) }
		}
		return m, nil
	}

	// Handle text input
	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(msg)
	cmds = append(cmds, inputCmd)

	// Debounce search
	if m.searchInput.Value() != m.lastQuery {
		query := m.searchInput.Value()
		cmds = append(cmds, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	// Show overlays if active
	if m.showHelp {
		return m.renderHelp()
	}

	if m.showSearch {
		return m.renderSearch()
	}

	if m.state.FullPlayerVisible {
		full := m.nowPlaying.Render(&m.state, m.width-2, m.height-3, true, true)
		return lipgloss.JoinVertical(lipgloss.Left, full, m.renderStatusBar())
	}

	// Main layout: two columns
	// Left: Now Playing (top), Queue (bottom)
	// Right: Playlists (top), History (bottom)

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 2

	nowPlaying := m.nowPlaying.Render(&m.state, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying, false)
	queueView := m.queueView.Render(&m.state.Queue, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelQueue)
	playlistsView := m.playlistsView.Render(m.playlists, m.active, rightWidth-2, topHeight-2, m.focusedPanel == PanelPlaylists)
	historyView := m.historyView.Render(rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, queueView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, playlistsView, historyView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:search  space:play/pause  n:next  p:prev  +/-:volume  tab:switch panel")

	switch {
	case m.lastError != nil:
		status = styles.ErrorText.Render("Error: " + m.lastError.Error())
	case m.notice != "":
		status = styles.Highlight.Render(m.notice)
	case m.state.LastError != "":
		status = styles.ErrorText.Render("Load failed: " + m.state.LastError)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Bhajan - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Search
  Tab          Next panel
  Shift+Tab    Previous panel
  Ctrl+R       Reload playlists

  Playback
  ────────
  Space        Play/Pause
  x            Stop
  n            Next track
  p            Previous track
  +/=          Volume up
  -            Volume down
  ←/→          Seek (Now Playing)
  r            Cycle repeat
  s            Toggle shuffle
  f            Full player
  y            Copy track URL

  Queue Panel
  ───────────
  j/↓          Select next
  k/↑          Select previous
  Enter        Play selected
  d            Remove selected

  Playlists Panel
  ───────────────
  j/↓          Select next
  k/↑          Select previous
  Enter        Play playlist

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderSearch() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Search"))
	b.WriteString("\n\n")

	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	selectedStyle := lipgloss.NewStyle().Background(styles.Border)

	switch {
	case m.searchErr != nil:
		b.WriteString(styles.ErrorText.Render("Error: " + m.searchErr.Error()))
	case m.searching:
		b.WriteString(styles.Muted.Render("Searching..."))
	case len(m.searchResults) == 0 && m.searchInput.Value() != "" && m.lastQuery != "":
		b.WriteString(styles.Muted.Render("No results found"))
	default:
		const maxResults = 10
		start := max(0, m.searchCursor-maxResults+1)
		for i := start; i < len(m.searchResults) && i < start+maxResults; i++ {
			track := m.searchResults[i]
			line := track.Name
			if track.Artist != "" {
				line += " " + styles.Muted.Render(track.Artist)
			}

			if i == m.searchCursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if len(m.searchResults) > start+maxResults {
			b.WriteString(styles.Muted.Render(fmt.Sprintf("  ...and %d more", len(m.searchResults)-start-maxResults)))
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("↑/↓:nav  Enter:play  Ctrl+q:queue  Esc:close"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI and blocks until the user quits. reloads, if not
// nil, triggers a playlist refresh each time it fires.
func Run(ctx context.Context, app *App, reloads <-chan struct{}) error {
	model := NewModel(app)
	unsubscribe := model.subscribe()
	defer unsubscribe()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if reloads != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-reloads:
					if !ok {
						return
					}
					p.Send(model.fetchPlaylists()())
				}
			}
		}()
	}

	_, err := p.Run()
	return err
}
