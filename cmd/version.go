// cmd/version.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aceteam-ai/modulus-cli/internal/model"
)

// Version will be set at build time
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number of modulus",
	Annotations: map[string]string{skipConfig: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "modulus version %s\n", Version)
		fmt.Fprintf(cmd.OutOrStdout(), "model artifact formats: %s\n", model.SupportedFormats)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
