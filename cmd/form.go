// cmd/form.go
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aceteam-ai/modulus-cli/internal/soil"
	"github.com/aceteam-ai/modulus-cli/internal/tui"
	"github.com/aceteam-ai/modulus-cli/internal/tui/form"
)

var formCmd = &cobra.Command{
	Use:   "form [variant]",
	Short: "Fill in lab test inputs interactively and predict",
	Long: `Open the interactive input form for a variant (base by default).

Move between fields with tab or the arrow keys, step values with pgup/pgdn,
pick the soil class with left/right and press enter to predict.`,
	ValidArgs: soil.Names(),
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := soil.VariantBase
		if len(args) == 1 {
			name = args[0]
		}
		if !tui.IsTTY() {
			return fmt.Errorf("the form needs an interactive terminal; use 'modulus predict %s' instead", name)
		}

		registry := newRegistry()
		svc, err := registry.Service(name)
		if err != nil {
			return err
		}
		if h, ok := registry.Handle(name); ok {
			loadModel(h, true)
		}

		// Console logging would draw over the form; the debug file still
		// receives every entry.
		log.SetOutput(io.Discard)
		return form.Run(cmd.Context(), svc)
	},
}

func init() {
	rootCmd.AddCommand(formCmd)
}
