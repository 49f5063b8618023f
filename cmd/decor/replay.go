package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/decor/internal/replay"
)

func newReplayCmd(c *cli) *cobra.Command {
	var (
		prettyOut bool
		noColor   bool
	)

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Run a YAML scenario and print decoration events as JSON lines",
		Long: `Replay loads a scenario (initial text plus decorate, edit, diagnostics,
lua and query steps), runs it against a fresh document and prints every
decoration change event, every query result and a final decoration table.

Output is one JSON object per line. When stdout is a terminal it is
indented and colored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sc *replay.Scenario
			var err error
			if args[0] == "-" {
				sc, err = replay.ParseScenario(os.Stdin)
			} else {
				sc, err = replay.LoadScenario(args[0])
			}
			if err != nil {
				return err
			}

			tty := isTerminal(c.stdout)
			out := replay.NewWriter(c.stdout, prettyOut || tty, tty && !noColor)
			return replay.NewRunner(c.cfg, c.logger, out).Run(cmd.Context(), sc)
		},
	}

	cmd.Flags().BoolVarP(&prettyOut, "pretty", "p", false, "Indent output even when not a terminal")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output on terminals")
	return cmd
}
