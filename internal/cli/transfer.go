package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/store"
)

var (
	exportFormat string
	exportOutput string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <legacy-file>",
	Short: "Import a legacy translations dump into the store",
	Long: `Import reads a legacy literal dump ({'0101': {'word': ' translation', ...}})
and appends its episodes to the configured store. Episodes already stored
are replaced. A dump that cannot be parsed exactly is rejected.

Example:
  episodic import translations_dict.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		imported, err := store.NewLegacyStore(args[0]).Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		if imported.Len() == 0 {
			logger.Warn("legacy dump holds no episodes", "path", args[0])
			return nil
		}

		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()

		index, err := store.Append(cmd.Context(), s, imported)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d episode(s); store now holds %d\n", imported.Len(), index.Len())
		return nil
	},
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store as JSON or as a legacy dump",
	Long: `Export writes every stored episode to stdout or --output.

Example:
  episodic export --format json --output corpus.json
  episodic export --format legacy --output translations_dict.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		if exportFormat != model.StoreJSON && exportFormat != model.StoreLegacy {
			return fmt.Errorf("unknown export format %q (json, legacy)", exportFormat)
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

		w, closeOutput, err := openOutput(cmd, exportOutput)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := closeOutput(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()

		if exportFormat == model.StoreLegacy {
			_, err = io.WriteString(w, store.MarshalLegacy(index)+"\n")
			return err
		}
		return store.WriteJSON(w, index)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", model.StoreJSON, "output format: json, legacy")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

// openOutput returns stdout when path is empty
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
