package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/episodic/internal/pipeline"
	"github.com/ppiankov/episodic/internal/transcript"
)

var (
	transcriptsOutput string
	transcriptsRaw    bool
)

// transcriptsCmd represents the transcripts command
var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "Fetch and prepare episode transcripts",
}

var transcriptsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download every transcript linked from the index page",
	Long: `Fetch follows the episode links of the configured index page and writes
the transcripts as one corpus: each episode header, its lines, a blank line.

Pages are fetched through the page cache and the rate limiter and respect
robots.txt.

Example:
  episodic transcripts fetch --output transcripts.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		fetcher, _ := pipeline.NewFetcherFromConfig(cfg, logger)
		scraper, err := transcript.NewScraper(cfg.Transcripts, fetcher, logger)
		if err != nil {
			return err
		}

		w, closeOutput, err := openOutput(cmd, transcriptsOutput)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := closeOutput(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()

		written, err := scraper.Scrape(ctx, w)
		progressf(cfg, "✓ Wrote %d transcript(s)\n", written)
		return err
	},
}

var transcriptsSplitCmd = &cobra.Command{
	Use:   "split <corpus-file>",
	Short: "Split a transcript corpus into cleaned episodes",
	Long: `Split reads a corpus written by 'transcripts fetch', cuts it into episodes
at the "Series NN Episode NN – title" headers and cleans every episode down
to its spoken lines. The result is the JSON read by 'build --transcripts'.

Example:
  episodic transcripts split transcripts.txt --output transcripts.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read corpus: %w", err)
		}

		var episodes []transcript.Episode
		if transcriptsRaw {
			episodes = transcript.Split(string(raw))
		} else {
			episodes = transcript.Prepare(string(raw))
		}
		if len(episodes) == 0 {
			return fmt.Errorf("no episode headers found in %s", args[0])
		}

		w, closeOutput, err := openOutput(cmd, transcriptsOutput)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := closeOutput(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(episodes); err != nil {
			return fmt.Errorf("encode episodes: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Split %d episode(s)\n", len(episodes))
		return nil
	},
}

func init() {
	transcriptsCmd.PersistentFlags().StringVarP(&transcriptsOutput, "output", "o", "", "output file (default: stdout)")
	transcriptsSplitCmd.Flags().BoolVar(&transcriptsRaw, "raw", false, "keep episode bodies uncleaned")

	rootCmd.AddCommand(transcriptsCmd)
	transcriptsCmd.AddCommand(transcriptsFetchCmd)
	transcriptsCmd.AddCommand(transcriptsSplitCmd)
}
