package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/coredata/pkg/domain"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List registered entity descriptors",
	Long: `Lists the default root entities plus the entities file.
With --discover, postType and taxonomy entities are loaded from the API first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		discover, _ := cmd.Flags().GetBool("discover")
		if !discover {
			reg, err := newRegistry(cfg)
			if err != nil {
				return err
			}
			return newRenderer(cmd).Entities(reg.All())
		}

		s, err := newSetup(cfg, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.client.Discover(cmd.Context()); err != nil {
			return err
		}
		return newRenderer(cmd).Entities(s.client.Entities(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(entitiesCmd)
	entitiesCmd.Flags().Bool("discover", false, "Load postType and taxonomy entities from the API")
}
