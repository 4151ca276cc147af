package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/store"
	"github.com/ppiankov/episodic/internal/vocab"
)

var (
	showEpisode string
	showLearned string
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the vocabulary of one episode",
	Long: `Show prints the stored vocabulary of an episode, one word per line with
its translation, leaving out the words you have already learned.

Without --episode it asks for the episode and the learned words.

Example:
  episodic show
  episodic show --episode 0907 --learned "physics laser"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()

		index, err := s.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load store: %w", err)
		}

		if showEpisode != "" {
			return showVocabulary(cmd.OutOrStdout(), index, showEpisode, showLearned)
		}
		return showInteractive(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), index)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showEpisode, "episode", "", "episode identifier (SSEE)")
	showCmd.Flags().StringVar(&showLearned, "learned", "", "space separated words to leave out")
}

// showVocabulary validates the episode before looking it up
func showVocabulary(w io.Writer, index *model.CorpusIndex, episode, learned string) error {
	id, err := model.ParseEpisodeID(strings.TrimSpace(episode))
	if err != nil {
		return err
	}
	dict, err := index.Lookup(id)
	if err != nil {
		return err
	}
	return vocab.FormatEntries(w, dict, vocab.FilterLearned(dict, vocab.ParseLearned(learned)))
}

// showInteractive prints the whole episode vocabulary, then the filtered
// one after the learned words are entered. An unknown or malformed episode
// is reported and asked for again.
func showInteractive(ctx context.Context, in io.Reader, out io.Writer, index *model.CorpusIndex) error {
	lines := bufio.NewScanner(in)
	prompt := func(label string) (string, error) {
		fmt.Fprint(out, label)
		if !lines.Scan() {
			if err := lines.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return lines.Text(), nil
	}

	var dict *model.EpisodeDictionary
	for dict == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		answer, err := prompt("Episode (SSEE): ")
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("no episode selected")
		}
		if err != nil {
			return err
		}
		id, err := model.ParseEpisodeID(strings.TrimSpace(answer))
		if err == nil {
			dict, err = index.Lookup(id)
		}
		if err != nil {
			if errors.Is(err, model.ErrInvalidEpisodeID) || errors.Is(err, model.ErrUnknownEpisode) {
				fmt.Fprintf(out, "%v\n", err)
				continue
			}
			return err
		}
	}

	fmt.Fprintln(out)
	if err := vocab.FormatEntries(out, dict, dict.Words()); err != nil {
		return err
	}

	answer, err := prompt("\nLearned words: ")
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	return vocab.FormatEntries(out, dict, vocab.FilterLearned(dict, vocab.ParseLearned(answer)))
}
