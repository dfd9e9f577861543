package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/bhajan/internal/catalog"
	"github.com/tessro/bhajan/internal/core"
	"github.com/tessro/bhajan/internal/errors"
	"github.com/tessro/bhajan/internal/tail"
)

var (
	playPlaylist  string
	playArtist    string
	playRepeat    string
	playShuffle   bool
	playStart     int
	playVolume    int
	playPick      bool
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
)

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Play tracks from the library",
	Long: `Load tracks into the queue and play them through the system audio device.
Playback events are printed as they happen until playback stops or Ctrl+C.

With no query and no --playlist or --artist, the whole library is queued.

Examples:
  bhajan play                          # Play the whole library
  bhajan play "achyutam keshavam"      # Search and play matches
  bhajan play --playlist "Morning"     # Play a playlist
  bhajan play --artist "Anup Jalota" --shuffle
  bhajan play --playlist "Aarti" --pick  # Choose the first track
  bhajan play --repeat all --volume 60`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playPlaylist, "playlist", "p", "", "Playlist name or ID")
	playCmd.Flags().StringVarP(&playArtist, "artist", "a", "", "Artist name or ID")
	playCmd.Flags().StringVarP(&playRepeat, "repeat", "r", "", "Repeat mode (none, one, all)")
	playCmd.Flags().BoolVarP(&playShuffle, "shuffle", "s", false, "Shuffle the queue")
	playCmd.Flags().IntVar(&playStart, "start", 1, "Position of the first track to play")
	playCmd.Flags().IntVar(&playVolume, "volume", 0, "Volume (0-100)")
	playCmd.Flags().BoolVar(&playPick, "pick", false, "Pick the first track interactively")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "Disable emoji output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "Show timestamps")
	playCmd.Flags().StringVarP(&playFormat, "format", "f", "", "Custom event format template")
	rootCmd.AddCommand(playCmd)
}

// selectTracks resolves the tracks a command should act on from the
// --playlist/--artist flags or a search query.
func selectTracks(ctx context.Context, source catalog.Source, lib *catalog.Library, playlist, artist, query string) ([]core.Track, string, error) {
	switch {
	case playlist != "":
		tracks, err := source.PlaylistTracks(ctx, playlist)
		return tracks, "playlist " + playlist, err
	case artist != "":
		tracks, err := source.ArtistTracks(ctx, artist)
		return tracks, "artist " + artist, err
	case query != "":
		tracks, err := source.Search(ctx, query)
		return tracks, fmt.Sprintf("%q", query), err
	default:
		return lib.Tracks(), "library", nil
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, logger)
	if err != nil {
		return err
	}
	defer sess.Close()
	sess.watchLibrary(ctx, nil)

	tracks, label, err := selectTracks(ctx, sess.source, sess.library, playPlaylist, playArtist, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return errors.WithSuggestion(
			fmt.Errorf("%w: nothing matched %s", errors.ErrQueueEmpty, label),
			"Run 'bhajan search' to see what your library contains",
		)
	}

	start := playStart - 1
	if playPick {
		start, err = pickTrack(tracks)
		if err != nil {
			return err
		}
	}
	if start < 0 || start >= len(tracks) {
		return fmt.Errorf("%w: --start %d for %d tracks", errors.ErrIndexOutOfRange, playStart, len(tracks))
	}

	eng := sess.engine
	if cmd.Flags().Changed("repeat") {
		mode, err := core.ParseRepeatMode(playRepeat)
		if err != nil {
			return err
		}
		eng.SetRepeatMode(mode)
	}
	if cmd.Flags().Changed("shuffle") {
		eng.SetShuffleMode(playShuffle)
	}
	if cmd.Flags().Changed("volume") {
		if playVolume < 0 || playVolume > 100 {
			return fmt.Errorf("volume must be between 0 and 100")
		}
		eng.SetVolume(float64(playVolume) / 100)
	}

	if eng.State().Shuffle {
		tracks = catalog.ShuffledFrom(tracks, start)
		start = 0
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!playNoEmoji),
		tail.WithTimestamp(playTimestamp),
		tail.WithTemplate(playFormat),
	)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	watcher := tail.NewWatcher(eng)
	go func() { _ = watcher.Start(watchCtx) }()

	if err := eng.LoadPlaylist(ctx, tracks, start); err != nil {
		return err
	}
	eng.Play()

	return followPlayback(ctx, watcher, formatter)
}

// followPlayback prints events until playback stops on its own, a later
// track fails to load, or ctx is cancelled.
func followPlayback(ctx context.Context, watcher *tail.Watcher, formatter *tail.Formatter) error {
	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if JSONOutput() {
				_ = enc.Encode(tail.NewRecord(event))
			} else {
				fmt.Println(formatter.Format(event))
			}

			switch event.Type {
			case tail.EventStop:
				return nil
			case tail.EventLoadError:
				return fmt.Errorf("%w: %s", errors.ErrLoadFailed, event.Current.LastError)
			}
		}
	}
}

// pickTrack asks the user which track should play first.
func pickTrack(tracks []core.Track) (int, error) {
	options := make([]huh.Option[int], len(tracks))
	for i, t := range tracks {
		label := t.String()
		if t.Duration > 0 {
			label = fmt.Sprintf("%s (%s)", label, FormatDuration(t.Duration))
		}
		options[i] = huh.NewOption(label, i)
	}

	var selected int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Start with").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return 0, fmt.Errorf("selection cancelled: %w", err)
	}
	return selected, nil
}
