package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/resolvers"
)

var embedCmd = &cobra.Command{
	Use:     "embed <url>",
	Short:   "Fetch the oEmbed preview of a URL",
	Long:    `Fetches the preview through the site's oEmbed proxy. URLs the site cannot embed print false.`,
	Example: `  coredata embed https://www.youtube.com/watch?v=dQw4w9WgXcQ`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSetup(cfg, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer s.Close()

		action, err := s.client.Run(cmd.Context(), resolvers.GetEmbedPreview(args[0]))
		if err != nil {
			return err
		}
		return newRenderer(cmd).Action(action)
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
}
