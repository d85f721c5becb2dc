package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ntfsinv/mftinv/internal/scan"
)

// newListVolumesCommand lists every volume and its mount paths without
// scanning anything.
func newListVolumesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-volumes",
		Short: "list every mounted volume and its mount paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			volumes, err := scan.ListVolumes()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "[WARN] %v\n", err)
			}
			for _, v := range volumes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", v.DevicePath, strings.Join(v.MountPaths, ", "))
			}
			return nil
		},
	}
}
