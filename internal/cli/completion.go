package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/motorrutas/pkg/flow"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for motorrutas.

Besides subcommands and flags, the script completes export formats and the
INICIO and FIN endpoints of export --edge.`,
		Example: `  source <(motorrutas completion bash)
  motorrutas completion zsh > "${fpath[1]}/_motorrutas"
  motorrutas completion fish | source
  motorrutas completion powershell | Out-String | Invoke-Expression

  motorrutas export --format <TAB>        # dot pdf png svg
  motorrutas export --edge 2:<TAB>        # 2:FIN`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeFormats completes export --format.
func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return exportFormats, cobra.ShellCompDirectiveNoFileComp
}

// completeEdge completes export --edge. INICIO is offered as a source and
// FIN only as a target, since FIN never leads anywhere.
func completeEdge(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if src, _, ok := strings.Cut(toComplete, ":"); ok {
		return []string{src + ":" + string(flow.End)}, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{string(flow.Start) + ":"}, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
