package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rentpay-backend/internal/handlers"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "rentpay",
		Short:   "Rent payment API server",
		Version: handlers.Version,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(resetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
