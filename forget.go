package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/travel-orchestrator/pkg/config"
)

func newForgetCmd() *cobra.Command {
	var session, envFile string
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete the checkpoint of a session so the next run starts fresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			configx.SetEnvFile(envFile)

			var closers []func() error
			store, err := buildStore(&closers)
			if err != nil {
				return err
			}
			defer func() {
				for _, c := range closers {
					_ = c()
				}
			}()

			if err := store.Delete(cmd.Context(), session); err != nil {
				return fmt.Errorf("delete session %s: %w", session, err)
			}
			log.Info().Str("session_id", session).Msg("session checkpoint deleted")
			return nil
		},
	}
	cmd.Flags().StringVarP(&session, "session", "s", "", "session id to delete")
	cmd.Flags().StringVar(&envFile, "env", "", "env file to load instead of ./.env")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
