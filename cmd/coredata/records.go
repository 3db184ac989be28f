package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/resolvers"
)

var recordsCmd = &cobra.Command{
	Use:   "records <kind/name>...",
	Short: "Fetch every record of one or more entities",
	Long: `Fetches the collections of the given entities concurrently.
Use --cached to read a collection already received into the record store.`,
	Example: `  coredata records postType/post postType/page
  coredata records root/postType --cached`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list := make([]resolvers.Resolver, 0, len(args))
		refs := make([]domain.EntityQuery, 0, len(args))
		for _, arg := range args {
			kind, name, err := splitEntity(arg)
			if err != nil {
				return err
			}
			list = append(list, resolvers.GetEntityRecords(kind, name))
			refs = append(refs, domain.EntityQuery{Kind: kind, Name: name})
		}

		s, err := newSetup(cfg, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		renderer := newRenderer(cmd)

		if cached, _ := cmd.Flags().GetBool("cached"); cached && len(refs) == 1 {
			records, err := s.client.Store().Records(ctx, refs[0].Kind, refs[0].Name)
			if err == nil {
				return renderer.Action(domain.ReceiveEntityRecords{
					Kind:    refs[0].Kind,
					Name:    refs[0].Name,
					Records: records,
					Query:   map[string]any{},
				})
			}
		}

		actions, err := s.client.RunAll(ctx, list...)
		if err != nil {
			return err
		}
		for _, action := range actions {
			if err := renderer.Action(action); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.Flags().Bool("cached", false, "Read a single entity collection from the record store first")
}
