// cmd/completion.go
package cmd

import (
	"io"
	"sort"

	"github.com/spf13/cobra"
)

var completionNoDesc bool

// completionWriters maps a shell to its script generator. includeDesc adds
// flag and variant descriptions where the shell supports them.
var completionWriters = map[string]func(w io.Writer, includeDesc bool) error{
	"bash": func(w io.Writer, includeDesc bool) error {
		return rootCmd.GenBashCompletionV2(w, includeDesc)
	},
	"zsh": func(w io.Writer, includeDesc bool) error {
		if includeDesc {
			return rootCmd.GenZshCompletion(w)
		}
		return rootCmd.GenZshCompletionNoDesc(w)
	},
	"fish": func(w io.Writer, includeDesc bool) error {
		return rootCmd.GenFishCompletion(w, includeDesc)
	},
	"powershell": func(w io.Writer, includeDesc bool) error {
		if includeDesc {
			return rootCmd.GenPowerShellCompletionWithDesc(w)
		}
		return rootCmd.GenPowerShellCompletion(w)
	},
}

func completionShells() []string {
	shells := make([]string, 0, len(completionWriters))
	for s := range completionWriters {
		shells = append(shells, s)
	}
	sort.Strings(shells)
	return shells
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print a shell completion script",
	Long: `Print a completion script for bash, zsh, fish or powershell.

Completions cover subcommands, variant names and --soil-class values.

  source <(modulus completion bash)
  modulus completion zsh > "${fpath[1]}/_modulus"
  modulus completion fish > ~/.config/fish/completions/modulus.fish
  modulus completion powershell | Out-String | Invoke-Expression`,
	Annotations: map[string]string{skipConfig: "true"},
	ValidArgs:   completionShells(),
	Args:        cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return completionWriters[args[0]](cmd.OutOrStdout(), !completionNoDesc)
	},
}

func init() {
	completionCmd.Flags().BoolVar(&completionNoDesc, "no-descriptions", false, "Leave descriptions out of the completions")
	rootCmd.AddCommand(completionCmd)
}
