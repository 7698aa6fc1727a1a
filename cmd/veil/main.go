package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veil/internal/interfaces/cli/migrate"
	"veil/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "veil",
		Short: "Veil subscription platform control plane",
		Long:  `Veil manages VPN subscriptions: accounts, packages, proxy nodes, and Clash subscription delivery.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
