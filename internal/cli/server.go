package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sweetshop/sweet-api/internal/infrastructure/config"
	"github.com/sweetshop/sweet-api/internal/server"
	"github.com/sweetshop/sweet-api/pkg/logger"
)

const serviceName = "sweet-api"

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the sweet shop API server",
	Long: `Starts the sweet shop API server. Configuration comes from the
environment (and a .env file when ENV=development). Usage:

	sweetshop server
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}

		log := logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  cfg.IsDevelopment(),
			Service: serviceName,
		})

		srv, err := server.New(ctx, cfg, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to start server")
			return fmt.Errorf("start server: %w", err)
		}
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("server error")
			return err
		}
		log.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
