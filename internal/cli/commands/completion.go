package commands

import (
	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for modelref.

To load completions:

Bash:

  $ source <(modelref completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ modelref completion bash > /etc/bash_completion.d/modelref
  # macOS:
  $ modelref completion bash > $(brew --prefix)/etc/bash_completion.d/modelref

Zsh:

  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ modelref completion zsh > "${fpath[1]}/_modelref"

  # You will need to start a new shell for this setup to take effect.

Fish:

  $ modelref completion fish | source

  # To load completions for each session, execute once:
  $ modelref completion fish > ~/.config/fish/completions/modelref.fish

PowerShell:

  PS> modelref completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> modelref completion powershell > modelref.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			default:
				return root.GenPowerShellCompletionWithDesc(w)
			}
		},
	}

	return cmd
}
