package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/bhajan/internal/logging"
	"github.com/tessro/bhajan/internal/tui"
	"github.com/tessro/bhajan/internal/tui/styles"
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive player",
	Long: `Launch the interactive terminal player.

The player shows:
  • Now Playing - current track, progress, repeat and shuffle
  • Queue - the play queue
  • Playlists - playlists in the library
  • History - tracks played this session

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Search
  Space        Play/Pause
  n            Next track
  p            Previous track
  +/-          Volume up/down
  r / s        Repeat / shuffle
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	// The terminal belongs to the UI; log to the file only.
	log, err := logging.New(cfg.Log, nil)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	styles.UseTheme(cfg.TUI.Theme)

	sess, err := openSession(ctx, log)
	if err != nil {
		return err
	}
	defer sess.Close()

	reloads := make(chan struct{}, 1)
	sess.watchLibrary(ctx, func() {
		select {
		case reloads <- struct{}{}:
		default:
		}
	})

	app := tui.NewApp(sess.engine, sess.source, time.Duration(cfg.TUI.RefreshInterval)*time.Millisecond)
	return tui.Run(ctx, app, reloads)
}
