package main

import (
	"github.com/spf13/cobra"

	"traqcheck/candidate-onboarding/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show candidate, request and document counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()
		defer logger.Sync()

		repo, err := config.InitRepository(config.Load(), logger)
		if err != nil {
			return err
		}

		stats, err := repo.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), stats)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
