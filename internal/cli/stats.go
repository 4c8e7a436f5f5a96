package cli

import (
	"github.com/spf13/cobra"

	"github.com/docvec/docvec/internal/config"
)

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if collection == "" {
				collection = cfg.Collection
			}
			return runStats(cmd.Context(), cfg, collection)
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "", "Collection to inspect (default from DOCVEC_COLLECTION)")

	return cmd
}
