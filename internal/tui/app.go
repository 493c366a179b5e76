package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/eldhoz-sb/Audio-Player/internal/media"
	"github.com/eldhoz-sb/Audio-Player/internal/metadata"
	"github.com/eldhoz-sb/Audio-Player/internal/player"
	"github.com/eldhoz-sb/Audio-Player/internal/playlist"
)

// Config holds TUI configuration options
type Config struct {
	RefreshRate   time.Duration // How often to refresh the display
	ActionTimeout time.Duration // Upper bound for a single playback action
	NameWidth     int           // Display columns reserved for track names
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RefreshRate:   500 * time.Millisecond,
		ActionTimeout: 10 * time.Second,
		NameWidth:     40,
	}
}

// Controller is the playback surface the TUI drives
type Controller interface {
	Select(ctx context.Context, i int) error
	Toggle(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Status() player.Status
}

// App is the TUI application for browsing and playing the playlist
type App struct {
	app        *tview.Application
	nowPlaying *tview.TextView
	progress   *tview.TextView
	tracks     *tview.List
	status     *tview.TextView

	config     Config
	controller Controller
	playlist   *playlist.Playlist
	logger     zerolog.Logger

	// mu guards the fields below, shared by the refresh loop and action goroutines
	mu        sync.Mutex
	lastError string

	// Last-rendered content for change detection
	lastNowPlaying string
	lastProgress   string
	lastStatus     string
	lastTracks     string
	lastBarWidth   int

	cancelFunc context.CancelFunc
}

// New creates a new TUI application
func New(cfg Config, controller Controller, pl *playlist.Playlist, logger zerolog.Logger) *App {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = DefaultConfig().RefreshRate
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = DefaultConfig().ActionTimeout
	}
	if cfg.NameWidth <= 0 {
		cfg.NameWidth = DefaultConfig().NameWidth
	}

	a := &App{
		app:        tview.NewApplication(),
		config:     cfg,
		controller: controller,
		playlist:   pl,
		logger:     logger.With().Str("component", "tui").Logger(),
	}
	a.setupUI()
	return a
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	a.nowPlaying = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.nowPlaying.SetBorder(true).
		SetTitle(" Now Playing ").
		SetTitleAlign(tview.AlignLeft)

	a.progress = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.progress.SetBorder(true)

	a.tracks = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	a.tracks.SetBorder(true).
		SetTitle(" Playlist ").
		SetTitleAlign(tview.AlignLeft)
	a.tracks.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		if index >= a.playlist.Len() {
			return
		}
		a.dispatch(func(ctx context.Context) error {
			return a.controller.Select(ctx, index)
		})
	})

	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.status.SetText(statusText(""))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.nowPlaying, 7, 1, false).
		AddItem(a.progress, 3, 1, false).
		AddItem(a.tracks, 0, 1, true).
		AddItem(a.status, 1, 1, false)

	a.app.SetInputCapture(a.handleKeyEvent)
	a.app.SetRoot(flex, true).SetFocus(a.tracks)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
		return nil
	case ' ':
		a.dispatch(a.controller.Toggle)
		return nil
	case 'n', 'N':
		a.dispatch(a.controller.Next)
		return nil
	case 'p', 'P':
		a.dispatch(a.controller.Previous)
		return nil
	}
	return event
}

// dispatch runs a playback action off the UI goroutine. Loading a track
// can wait for the element, which must not freeze the screen.
func (a *App) dispatch(action func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.config.ActionTimeout)
		defer cancel()

		err := action(ctx)

		a.mu.Lock()
		if err != nil {
			a.logger.Warn().Err(err).Msg("Playback action failed")
			a.lastError = err.Error()
		} else {
			a.lastError = ""
		}
		a.mu.Unlock()

		a.refresh()
	}()
}

// Run starts the TUI and blocks until it is stopped or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancelFunc = context.WithCancel(ctx)

	go a.refreshLoop(ctx)

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// refreshLoop is the single source of periodic redraws
func (a *App) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(a.config.RefreshRate)
	defer ticker.Stop()

	a.refresh()
	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			a.refresh()
		}
	}
}

// refresh updates all UI components
func (a *App) refresh() {
	st := a.controller.Status()
	tracks := a.playlist.Tracks()

	a.app.QueueUpdateDraw(func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		a.updateNowPlaying(st)
		a.updateProgress(st)
		a.updateTracks(st, tracks)
		a.updateStatus()
	})
}

// updateNowPlaying updates the now playing panel. Must be called with a.mu held.
func (a *App) updateNowPlaying(st player.Status) {
	text := nowPlayingText(st)
	if text != a.lastNowPlaying {
		a.lastNowPlaying = text
		a.nowPlaying.SetText(text)
	}
}

// updateProgress updates the progress bar. Must be called with a.mu held.
func (a *App) updateProgress(st player.Status) {
	var text string

	if st.HasTrack() {
		_, _, width, _ := a.progress.GetInnerRect()
		barWidth := width - 14 // Account for time display
		// Only update cached width when GetInnerRect returns a positive value,
		// avoiding flicker from transient zero-width during layout.
		if barWidth > 0 {
			a.lastBarWidth = barWidth
		}
		if a.lastBarWidth < 10 {
			a.lastBarWidth = 10
		}

		duration := st.Track.Metadata.Duration
		text = fmt.Sprintf("%s %s %s",
			playlist.FormatTime(st.Position),
			buildProgressBar(st.Position, duration, a.lastBarWidth),
			playlist.FormatTime(duration))
	}

	if text != a.lastProgress {
		a.lastProgress = text
		a.progress.SetText(text)
	}
}

// updateTracks rebuilds the playlist panel when its content changed.
// Must be called with a.mu held.
func (a *App) updateTracks(st player.Status, tracks []playlist.Track) {
	rows := make([]string, len(tracks))
	for i, t := range tracks {
		marker := " "
		if i == st.Index {
			marker = stateIcon(st.State)
		}
		rows[i] = playlistRow(i, t, a.config.NameWidth, marker)
	}

	key := strings.Join(rows, "\n")
	if key == a.lastTracks && a.tracks.GetItemCount() > 0 {
		return
	}
	a.lastTracks = key

	selected := a.tracks.GetCurrentItem()
	a.tracks.Clear()
	for _, row := range rows {
		a.tracks.AddItem(row, "", 0, nil)
	}
	if len(rows) == 0 {
		a.tracks.AddItem("[gray]Playlist is empty - add tracks with 'audioplayer add'[-]", "", 0, nil)
		return
	}
	if selected >= len(rows) {
		selected = len(rows) - 1
	}
	a.tracks.SetCurrentItem(selected)
}

// updateStatus updates the status bar. Must be called with a.mu held.
func (a *App) updateStatus() {
	text := statusText(a.lastError)
	if text != a.lastStatus {
		a.lastStatus = text
		a.status.SetText(text)
	}
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// nowPlayingText renders the now playing panel for a status
func nowPlayingText(st player.Status) string {
	if !st.HasTrack() {
		return "\n\n[gray]No track loaded[-]"
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(st.Track.DisplayName())))

	md := st.Track.Metadata
	switch {
	case md.Artist != "" && md.Title != "":
		sb.WriteString(fmt.Sprintf("[yellow]%s - %s[-]\n", tview.Escape(md.Artist), tview.Escape(md.Title)))
	case md.Title != "":
		sb.WriteString(fmt.Sprintf("[yellow]%s[-]\n", tview.Escape(md.Title)))
	default:
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("[gray]%s[-]", coverLabel(st.Track.Cover)))

	sb.WriteString(fmt.Sprintf("\n\n%s", stateIcon(st.State)))
	return sb.String()
}

// coverLabel describes the cover image, or the default cover when there is none
func coverLabel(c *metadata.Cover) string {
	w, h, err := c.Dimensions()
	if err != nil {
		return "Cover: default"
	}
	return fmt.Sprintf("Cover: %dx%d %s", w, h, c.MIMEType)
}

// stateIcon returns the colored indicator for a play state
func stateIcon(state media.PlayState) string {
	switch state {
	case media.StatePlaying:
		return "[green]▶[-]" // Play triangle
	case media.StatePaused:
		return "[yellow]⏸[-]" // Pause icon
	default:
		return " "
	}
}

// playlistRow renders one playlist entry with the name padded to nameWidth columns
func playlistRow(index int, t playlist.Track, nameWidth int, marker string) string {
	name := runewidth.Truncate(t.DisplayName(), nameWidth, "…")
	name = runewidth.FillRight(name, nameWidth)
	return fmt.Sprintf("%s %3d. %s  %s", marker, index+1, tview.Escape(name), playlist.FormatTime(t.Metadata.Duration))
}

func statusText(lastError string) string {
	keys := "[gray]enter:play  space:play/pause  n:next  p:prev  q:quit[-]"
	if lastError == "" {
		return keys
	}
	return fmt.Sprintf("[red]%s[-]  %s", tview.Escape(lastError), keys)
}

// buildProgressBar creates a text-based progress bar
func buildProgressBar(position, duration time.Duration, width int) string {
	if duration == 0 || width <= 0 {
		return strings.Repeat("-", width)
	}

	progress := float64(position) / float64(duration)
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}

	filled := int(progress * float64(width))
	empty := width - filled

	bar := "[green]" + strings.Repeat("█", filled) + "[-]" +
		"[gray]" + strings.Repeat("░", empty) + "[-]"

	return bar
}
