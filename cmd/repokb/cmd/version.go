package cmd

import (
	"github.com/spf13/cobra"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/output"
	"github.com/girijashankarj/garry-rag-repo-harness/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())
			if jsonOut {
				return out.JSON(version.GetInfo())
			}
			out.Printf("%s", version.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print version info as JSON")
	return cmd
}
