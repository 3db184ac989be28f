package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/resolvers"
)

var recordCmd = &cobra.Command{
	Use:   "record <kind/name> <id>",
	Short: "Fetch one entity record",
	Example: `  coredata record postType/post 1
  coredata record root/postType page --cached`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, name, err := splitEntity(args[0])
		if err != nil {
			return err
		}

		s, err := newSetup(cfg, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		renderer := newRenderer(cmd)

		if cached, _ := cmd.Flags().GetBool("cached"); cached {
			record, err := s.client.Store().Record(ctx, kind, name, args[1])
			if err == nil {
				return renderer.Action(domain.ReceiveEntityRecord(kind, name, record))
			}
			s.logger.Debug("cache miss", "kind", kind, "name", name, "id", args[1])
		}

		action, err := s.client.Run(ctx, resolvers.GetEntityRecord(kind, name, args[1]))
		if err != nil {
			return err
		}
		return renderer.Action(action)
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().Bool("cached", false, "Read from the record store first (useful with --redis-addr)")
}
