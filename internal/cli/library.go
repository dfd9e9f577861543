package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/bhajan/internal/catalog"
)

var (
	searchLimit   int
	queuePlaylist string
	queueArtist   string
	queueShuffle  bool
	queueLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the library",
	Long: `Search track names, artists and albums. Every word must match.

Examples:
  bhajan search krishna
  bhajan search "jai ram" --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var playlistsCmd = &cobra.Command{
	Use:     "playlists [name]",
	Aliases: []string{"pl"},
	Short:   "List playlists or show one",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runPlaylists,
}

var artistsCmd = &cobra.Command{
	Use:   "artists",
	Short: "List artists in the library",
	RunE:  runArtists,
}

var queueCmd = &cobra.Command{
	Use:   "queue [query]",
	Short: "Show the queue a play command would build",
	Long: `Print the tracks, in order, that 'bhajan play' would queue for the same
selection. Useful for checking a playlist or shuffle before starting.`,
	RunE: runQueue,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 20, "Maximum number of results")

	queueCmd.Flags().StringVarP(&queuePlaylist, "playlist", "p", "", "Playlist name or ID")
	queueCmd.Flags().StringVarP(&queueArtist, "artist", "a", "", "Artist name or ID")
	queueCmd.Flags().BoolVarP(&queueShuffle, "shuffle", "s", false, "Shuffle the queue")
	queueCmd.Flags().IntVarP(&queueLimit, "limit", "l", 0, "Maximum number of tracks to show")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(playlistsCmd)
	rootCmd.AddCommand(artistsCmd)
	rootCmd.AddCommand(queueCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, source, closeSource, err := openLibrary(ctx, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	tracks, err := source.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return printTracks(os.Stdout, tracks, searchLimit)
}

func runPlaylists(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, source, closeSource, err := openLibrary(ctx, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	if len(args) == 1 {
		tracks, err := source.PlaylistTracks(ctx, args[0])
		if err != nil {
			return err
		}
		return printTracks(os.Stdout, tracks, 0)
	}

	playlists, err := source.Playlists(ctx)
	if err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"playlists": playlists,
		})
	}

	if len(playlists) == 0 {
		fmt.Println("No playlists in library")
		return nil
	}

	t := NewTable("NAME", "TRACKS", "DESCRIPTION")
	for _, p := range playlists {
		t.Row(p.Name, fmt.Sprintf("%d", len(p.TrackIDs)), TruncateString(p.Description, 50))
	}
	t.Flush()
	return nil
}

func runArtists(cmd *cobra.Command, args []string) error {
	lib, _, closeSource, err := openLibrary(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer closeSource()

	artists := lib.Artists()
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"artists": artists,
		})
	}

	for _, a := range artists {
		fmt.Println(a.Name)
	}
	return nil
}

func runQueue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	lib, source, closeSource, err := openLibrary(ctx, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	tracks, _, err := selectTracks(ctx, source, lib, queuePlaylist, queueArtist, strings.Join(args, " "))
	if err != nil {
		return err
	}

	shuffle := cfg.Defaults.Shuffle
	if cmd.Flags().Changed("shuffle") {
		shuffle = queueShuffle
	}
	if shuffle {
		tracks = catalog.Shuffled(tracks)
	}

	return printTracks(os.Stdout, tracks, queueLimit)
}
