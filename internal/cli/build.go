package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/pipeline"
	"github.com/ppiankov/episodic/internal/store"
	"github.com/ppiankov/episodic/internal/transcript"
	"github.com/ppiankov/episodic/internal/translate"
	"github.com/ppiankov/episodic/internal/vocab"
)

var (
	buildTranscripts string
	buildText        string
	buildTextFile    string
	buildEpisode     string
	buildDryRun      bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build episode vocabularies from transcripts",
	Long: `Build annotates each episode transcript, extracts the words and phrasal
verbs worth learning, translates them and appends the episode dictionaries
to the store. Episodes already in the store are replaced.

Episodes are processed one at a time; Ctrl-C stops the run and keeps the
episodes finished so far.

Example:
  episodic build --transcripts transcripts.json
  episodic build --episode 0101 --text "She gave up smoking."
  episodic build --episode 0101 --text-file pilot.txt --dry-run`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildTranscripts, "transcripts", "", "episode JSON written by 'transcripts split'")
	buildCmd.Flags().StringVar(&buildText, "text", "", "transcript text of a single episode")
	buildCmd.Flags().StringVar(&buildTextFile, "text-file", "", "file with the transcript of a single episode")
	buildCmd.Flags().StringVar(&buildEpisode, "episode", "", "episode identifier (SSEE) for --text or --text-file")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "print the vocabularies instead of saving them")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	episodes, err := buildInput()
	if err != nil {
		return err
	}

	exclusion, err := vocab.LoadWordSet(cfg.Extraction.StopwordsFile, cfg.Extraction.KnownWordsFile)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, exclusion, logger)
	if err != nil {
		return err
	}
	p.OnEpisode = func(r pipeline.EpisodeResult) {
		progressf(cfg, "✓ %s: %d candidates, %d translated (%s)\n", r.ID, r.Candidates, r.Translated, r.Elapsed.Round(time.Millisecond))
	}
	if cfg.Output.Verbose {
		p.Resolver().OnResult = func(word string, res translate.Result) {
			if res.OK() {
				fmt.Fprintf(os.Stderr, "  %s%s\n", word, res.Entry.Rendering)
			}
		}
	}

	progressf(cfg, "Building %d episode(s) with sources %v\n", len(episodes), p.Resolver().Sources())
	built, buildErr := p.BuildCorpus(ctx, episodes)

	if buildDryRun {
		for _, dict := range built.Episodes() {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", dict.ID)
			if err := vocab.FormatEntries(cmd.OutOrStdout(), dict, dict.Words()); err != nil {
				return err
			}
		}
		return buildErr
	}

	if built.Len() > 0 {
		s, err := store.Open(cfg.Store)
		if err != nil {
			return errors.Join(buildErr, err)
		}
		defer s.Close()

		// the saving context is not tied to the interrupt so finished episodes survive Ctrl-C
		index, err := store.Append(cmd.Context(), s, built)
		if err != nil {
			return errors.Join(buildErr, err)
		}
		progressf(cfg, "✓ Saved %d episode(s); store now holds %d\n", built.Len(), index.Len())
	}
	return buildErr
}

// buildInput reads the episodes named by the build flags
func buildInput() ([]transcript.Episode, error) {
	single := buildText != "" || buildTextFile != ""
	switch {
	case buildTranscripts != "" && single:
		return nil, fmt.Errorf("use either --transcripts or --text/--text-file")
	case buildTranscripts != "":
		raw, err := os.ReadFile(buildTranscripts)
		if err != nil {
			return nil, fmt.Errorf("read transcripts: %w", err)
		}
		var episodes []transcript.Episode
		if err := json.Unmarshal(raw, &episodes); err != nil {
			return nil, fmt.Errorf("decode transcripts %s: %w", buildTranscripts, err)
		}
		for _, ep := range episodes {
			if _, err := model.ParseEpisodeID(string(ep.ID)); err != nil {
				return nil, fmt.Errorf("transcripts %s: %w", buildTranscripts, err)
			}
		}
		return episodes, nil
	case single:
		id, err := model.ParseEpisodeID(buildEpisode)
		if err != nil {
			return nil, fmt.Errorf("--episode: %w", err)
		}
		text := buildText
		if buildTextFile != "" {
			raw, err := os.ReadFile(buildTextFile)
			if err != nil {
				return nil, fmt.Errorf("read text file: %w", err)
			}
			text = string(raw)
		}
		return []transcript.Episode{{ID: id, Text: text}}, nil
	default:
		return nil, fmt.Errorf("nothing to build: pass --transcripts or --episode with --text/--text-file")
	}
}
