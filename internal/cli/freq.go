package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/episodic/internal/store"
	"github.com/ppiankov/episodic/internal/vocab"
)

var (
	freqOutput string
	freqLimit  int
)

// freqCmd represents the freq command
var freqCmd = &cobra.Command{
	Use:   "freq",
	Short: "Print the frequency dictionary of the whole series",
	Long: `Freq counts in how many episodes each stored word occurs and prints the
words most frequent first, with their translations.

Example:
  episodic freq --limit 100
  episodic freq --output frequency_dictionary.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
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

		freqs := vocab.Frequencies(index)
		if freqLimit > 0 && freqLimit < len(freqs) {
			freqs = freqs[:freqLimit]
		}

		w, closeOutput, err := openOutput(cmd, freqOutput)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := closeOutput(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return vocab.FormatFrequencies(w, freqs)
	},
}

func init() {
	rootCmd.AddCommand(freqCmd)

	freqCmd.Flags().StringVarP(&freqOutput, "output", "o", "", "output file (default: stdout)")
	freqCmd.Flags().IntVar(&freqLimit, "limit", 0, "print only the N most frequent words (0: all)")
}
