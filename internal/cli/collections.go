package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docvec/docvec/internal/config"
)

// CollectionsCmd creates the collections command.
func CollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List collections in the vector store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			st, err := OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.ListCollections(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("no collections")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}
