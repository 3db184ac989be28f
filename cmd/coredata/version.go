package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/coredata"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of coredata",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "coredata version %s\n", strings.TrimSpace(coredata.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
