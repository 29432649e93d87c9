// cmd/init.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aceteam-ai/modulus-cli/internal/config"
	"github.com/aceteam-ai/modulus-cli/internal/ui"
)

var (
	initForce bool
	initPath  string
)

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a default config file",
	Long:        `Write the default configuration to $HOME/.modulus/config.yaml (or --path).`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := initPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.WriteDefault(path, initForce); err != nil {
			return err
		}

		sl := ui.NewStatusLine(cmd.OutOrStdout())
		sl.Success("Wrote " + path)
		sl.Hint("Point models.base and models.subgrade at your exported model artifacts.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
	initCmd.Flags().StringVar(&initPath, "path", "", "Where to write the config (default is $HOME/.modulus/config.yaml)")
	rootCmd.AddCommand(initCmd)
}
