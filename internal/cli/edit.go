package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/motorrutas/pkg/editor"
	"github.com/matzehuels/motorrutas/pkg/integrations/rutas"
)

type editOpts struct {
	noCache bool
	output  string
	offline bool
}

// editCommand creates the terminal route editor.
func (c *CLI) editCommand() *cobra.Command {
	opts := editOpts{output: "ruta.dot"}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a route interactively in the terminal",
		Long: `Edit loads the route template and opens a terminal editor with the
available and selected establishments and the route graph.

Tap a node with t to pick it as source, then confirm a target with c.
Tapping the source again or pressing esc cancels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the template cache")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "skip the source and start from the placeholder list")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "DOT file written by the export key")

	return cmd
}

func (c *CLI) runEdit(cmd *cobra.Command, opts editOpts) error {
	ctx := cmd.Context()

	var (
		ed   *editor.Editor
		load = !opts.offline
	)
	if opts.offline {
		ed = editor.New(nil, editor.WithLogger(c.Logger), editor.WithItems(rutas.Placeholder()))
	} else {
		var closeCache func() error
		var err error
		ed, closeCache, err = c.openEditor(ctx, opts.noCache)
		if err != nil {
			return err
		}
		defer closeCache()
	}

	// Log lines would corrupt the alternate screen.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(LogError)
	defer c.Logger.SetLevel(level)

	model := NewEditorModel(ctx, ed, opts.output, load)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	snap := final.(EditorModel).Editor.Snapshot()
	printSuccess("Route closed")
	printStats(len(snap.Selected), len(snap.Edges))
	return nil
}
