package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/episodic/internal/store"
	"github.com/ppiankov/episodic/internal/webapi"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stored vocabularies over a read-only HTTP API",
	Long: `Serve loads the store once and answers:

  GET /api/episodes                      episode list with entry counts
  GET /api/episodes/:id?learned=a+b      vocabulary of one episode
  GET /api/frequencies?limit=N           series frequency dictionary

Example:
  episodic serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		index, err := s.Load(ctx)
		_ = s.Close()
		if err != nil {
			return fmt.Errorf("load store: %w", err)
		}

		e, errCh := webapi.Setup(cfg.Server.Addr, index, logger)
		fmt.Fprintf(os.Stderr, "Serving %d episode(s) on %s\n", index.Len(), cfg.Server.Addr)

		select {
		case err, ok := <-errCh:
			if ok {
				return err
			}
			return nil
		case <-ctx.Done():
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			return e.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config: :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
