// ledgerctl is an operator CLI for the payment ledger HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "ledgerctl",
		Short:   "ledgerctl - operate the payment ledger",
		Version: Version,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("LEDGER_URL", "http://localhost:8080"), "ledger server base URL")
	rootCmd.PersistentFlags().StringVar(&callerAddr, "as", "", "caller address sent in the caller header")

	rootCmd.AddCommand(paymentsCmd())
	rootCmd.AddCommand(refundsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
