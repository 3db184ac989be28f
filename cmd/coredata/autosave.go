package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/resolvers"
)

var autosaveCmd = &cobra.Command{
	Use:     "autosave <post-type> <post-id>",
	Short:   "Fetch the latest autosave of a post",
	Example: `  coredata autosave post 42`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid post id %q: %w", args[1], err)
		}

		s, err := newSetup(cfg, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer s.Close()

		action, err := s.client.Run(cmd.Context(), resolvers.GetAutosave(domain.PostRef{ID: postID, Type: args[0]}))
		if err != nil {
			return err
		}
		return newRenderer(cmd).Action(action)
	},
}

func init() {
	rootCmd.AddCommand(autosaveCmd)
}
