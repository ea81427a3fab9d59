package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/motorrutas/pkg/integrations/rutas"
)

type fetchOpts struct {
	noCache bool
	reload  bool
	json    bool
}

// fetchCommand creates the command that runs the source chain once.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the route template and print its establishments",
		Long: `Fetch runs the source chain once: the primary URL, then the secondary,
then the placeholder list when both fail.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the template cache")
	cmd.Flags().BoolVar(&opts.reload, "reload", false, "retry the primary URL only, bypassing the cache")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")

	return cmd
}

func (c *CLI) runFetch(cmd *cobra.Command, opts fetchOpts) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	backend, err := newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer backend.Close()
	source := c.newSource(cfg, backend)

	prog := newProgress(loggerFromContext(ctx))
	sp := startSpinner(ctx, os.Stderr, "Fetching route template...")

	fetch := source.Fetch
	if opts.reload {
		fetch = source.Reload
	}
	res, err := fetch(ctx)
	if err != nil {
		sp.stop()
		return err
	}
	switch {
	case opts.json:
		sp.stop()
	case res.Fallback():
		sp.fail("%s", res.Err)
	default:
		sp.succeed("Loaded %s", StyleHighlight.Render(res.RouteName))
	}
	prog.done(fmt.Sprintf("Fetched %d establishments", len(res.Items)))

	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(res)
	return nil
}

// printResult lists the fetched establishments below the spinner's status line.
func printResult(res rutas.Result) {
	if res.Fallback() {
		printDetail("Using placeholder establishments")
	} else {
		printDetail("Source: %s", res.URL)
	}
	printNewline()
	for _, it := range res.Items {
		printKeyValue(string(it.ID), it.DisplayLabel())
	}
	printNewline()
	printNextStep("Edit this route", "motorrutas edit")
}
