package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weirin1/html/internal/output"
	"github.com/weirin1/html/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		if short, _ := flags.GetBool("short"); short {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		}
		if asJSON, _ := flags.GetBool("json"); asJSON {
			w := output.NewJSONWriter(cmd.OutOrStdout(), true, "  ")
			_ = w.Write(version.Get())
			return w.Close()
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("short", false, "print only the version number")
	versionCmd.Flags().Bool("json", false, "print version information as JSON")
}
