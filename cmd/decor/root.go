package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/decor/internal/config"
	"github.com/dshills/decor/internal/logging"
)

// cli holds state shared by the subcommands.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "decor",
		Short:         "Replay decoration scenarios against an edit-tracking decoration store",
		Long:          longHelp(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(newReplayCmd(c), newVersionCmd(c))
	return root
}

// init loads the configuration and builds the logger. --log-level wins over
// the file and the environment.
func (c *cli) init() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		if _, err := logging.ParseLevel(c.logLevel); err != nil {
			return err
		}
		cfg.Log.Level = c.logLevel
	}

	c.cfg = cfg
	c.logger = logging.New(c.stderr, cfg.Log)
	return nil
}

// longHelp describes the tool and lists the environment overrides.
func longHelp() string {
	var sb strings.Builder
	sb.WriteString("decor replays YAML scenarios against an edit-tracking decoration store\n")
	sb.WriteString("and prints every decoration change as a JSON line.\n\n")
	sb.WriteString("Environment overrides (applied over the config file):\n")
	for _, v := range config.EnvVars() {
		fmt.Fprintf(&sb, "  %-32s %s\n", v.Name, v.Path)
	}
	return sb.String()
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
