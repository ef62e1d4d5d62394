package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-shop-admin/cmd/adminctl/output"
	"github.com/imrishuroy/go-shop-admin/internal/app"
	"github.com/imrishuroy/go-shop-admin/internal/aws"
	"github.com/imrishuroy/go-shop-admin/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "adminctl",
	Short: "Operator tasks for the shop admin backend",
	Long: `adminctl manages admin accounts and replays inventory sync against the
tables named in the environment (.env is read when present).

Examples:
  adminctl create-admin --email owner@shop.com
  adminctl set-active --email staff@shop.com --active=false
  adminctl sync-stock --order 2f1c...`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

// loadApp wires the services the same way the API does.
func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("aws clients: %w", err)
	}
	return app.New(cfg, clients), nil
}
