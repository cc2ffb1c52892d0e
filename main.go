package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	_ "github.com/tanpawarit/travel-orchestrator/pkg/logger/autoload"
)

var rootCmd = &cobra.Command{
	Use:           "travel-orchestrator",
	Short:         "Research travel destinations with a supervised set of workers",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newRunCmd(), newForgetCmd())
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
