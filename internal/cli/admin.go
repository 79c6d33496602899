package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sweetshop/sweet-api/internal/core/service"
	"github.com/sweetshop/sweet-api/internal/infrastructure/config"
	"github.com/sweetshop/sweet-api/internal/infrastructure/db/mongo"
	"github.com/sweetshop/sweet-api/internal/infrastructure/token"
	"github.com/sweetshop/sweet-api/pkg/logger"
)

// adminCmd groups account maintenance that talks to MongoDB directly.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the administrator account if it does not exist",
	Long: `Creates an administrator with the given credentials. Flags default to
ADMIN_EMAIL and ADMIN_PASSWORD. An existing account with the same email is
left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" {
			email = cfg.Admin.Email
		}
		if password == "" {
			password = cfg.Admin.Password
		}
		if email == "" || password == "" {
			return errors.New("email and password are required")
		}

		log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: serviceName})

		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return err
		}

		auth := service.NewAuthService(mongo.NewUserRepository(db), token.NewJWT(cfg.JWTSecret, cfg.TokenTTL), log)
		user, created, err := auth.EnsureAdmin(ctx, email, password)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}

		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %s)\n", user.Email, user.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", user.Email)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminCreateCmd)

	adminCreateCmd.Flags().String("email", "", "administrator email (default $ADMIN_EMAIL)")
	adminCreateCmd.Flags().String("password", "", "administrator password (default $ADMIN_PASSWORD)")
}
