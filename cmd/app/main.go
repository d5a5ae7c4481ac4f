package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"weeklypay_go/internal/app"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "weeklypay",
		Short: "💸 WeeklyPay dividend dashboard backend",
		Long: `weeklypay serves the Roundhill WeeklyPay dividend dashboard: the US market
session, live USD/KRW and ETF prices behind a short-lived cache, and the
dividend calculators.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootstrap := app.NewBootstrap(cfgFile)
			if err := bootstrap.Initialize(); err != nil {
				return fmt.Errorf("bootstrapping failed: %w", err)
			}
			return bootstrap.Serve(cmd.Context())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "weeklypay %s\n", version)
		},
	}
}
