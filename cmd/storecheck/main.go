// Package main provides the storecheck CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storecheck",
	Short: "App store compliance checker for mobile app repositories",
	Long:  "Storecheck analyzes a GitHub repository against Apple App Store and Google Play compliance rules, then enriches the findings with AI-generated locations, fixes, and content validation.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
