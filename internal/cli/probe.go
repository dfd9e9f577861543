package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/bhajan/internal/audio"
	"github.com/tessro/bhajan/internal/audio/local"
	"github.com/tessro/bhajan/internal/media"
)

// sniffBytes is how much of a file is read to detect its format.
const sniffBytes = 512

var probeCmd = &cobra.Command{
	Use:   "probe <url>",
	Short: "Check that a track URL can be fetched",
	Long: `Open a media URL the way playback would and report its size and format.
Accepts http(s)://, s3://bucket/key and local file paths.`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	url := audio.NormalizeURL(args[0])

	s3, err := media.NewS3Client(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage client: %w", err)
	}
	sources := media.NewSources(media.WithS3Client(s3), media.WithLogger(logger))

	rc, size, err := sources.Open(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(rc, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("read %s: %w", url, err)
	}

	hinted := audio.DetectFormat(url)
	sniffed := local.Sniff(head[:n])

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"url":        url,
			"size":       size,
			"extension":  hinted.String(),
			"detected":   sniffed.String(),
			"playable":   local.AudioAvailable,
			"normalized": url != args[0],
		})
	}

	sizeStr := "unknown"
	if size >= 0 {
		sizeStr = humanize.Bytes(uint64(size))
	}

	fmt.Printf("URL:       %s\n", url)
	fmt.Printf("Size:      %s\n", sizeStr)
	fmt.Printf("Extension: %s\n", hinted)
	fmt.Printf("Detected:  %s\n", sniffed)
	if hinted != audio.FormatUnknown && sniffed != audio.FormatUnknown && hinted != sniffed {
		fmt.Println("Warning: file extension does not match its contents")
	}
	if !local.AudioAvailable {
		fmt.Println("Note: this build has no audio output")
	}
	return nil
}
