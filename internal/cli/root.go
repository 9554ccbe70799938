// Package cli implements the kgview command line explorer.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/OFFIS-RIT/kgview/internal/ui"
	"github.com/OFFIS-RIT/kgview/internal/util"
	"github.com/OFFIS-RIT/kgview/pkg/client"
	"github.com/OFFIS-RIT/kgview/pkg/config"
	"github.com/OFFIS-RIT/kgview/pkg/explorer"
	"github.com/OFFIS-RIT/kgview/pkg/graph"
	"github.com/OFFIS-RIT/kgview/pkg/logger"
	"github.com/OFFIS-RIT/kgview/pkg/logger/console"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

const (
	openTries = 3
	openWait  = 500 * time.Millisecond
)

type options struct {
	configPath string
	server     string
	graphName  string
	offline    bool
	noColor    bool
	debug      bool

	cfg *config.Config
}

// Execute runs the root command and prints a failure with its hints.
func Execute() error {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(cmd.ErrOrStderr(), err)
	}
	return err
}

func printError(w io.Writer, err error) {
	ui.Bad.Fprintf(w, "kgview: %v\n", err)
	for _, hint := range errors.GetAllHints(err) {
		ui.Subtle.Fprintf(w, "  hint: %s\n", hint)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "kgview",
		Short: "kgview: explore knowledge graphs from the terminal",
		Long: ui.Brand.Sprint("kgview") + ": explore knowledge graphs from the terminal\n" +
			ui.Subtle.Sprint("Find paths, inspect neighborhoods and ask a model to explain concepts"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
	}
	root.SetVersionTemplate("kgview {{ .Version }}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	flags.StringVarP(&opts.server, "server", "s", "", "kgview server URL")
	flags.StringVarP(&opts.graphName, "graph", "g", "", "Graph document to open")
	flags.BoolVar(&opts.offline, "offline", false, "Use the built-in demo graph instead of a server")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&opts.debug, "debug", false, "Log debug messages")

	root.AddCommand(
		pathCmd(opts),
		neighborsCmd(opts),
		legendCmd(opts),
		layoutCmd(opts),
		selfTestCmd(opts),
		explainCmd(opts),
		askCmd(opts),
		graphsCmd(opts),
		configCmd(opts),
	)
	return root
}

func (o *options) init() error {
	util.LoadEnv()

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	cfg.Server.URL = util.GetEnvString("KGVIEW_SERVER", cfg.Server.URL)
	if o.server != "" {
		cfg.Server.URL = o.server
	}
	if o.graphName != "" {
		cfg.Server.Graph = o.graphName
	}
	o.cfg = cfg

	if o.noColor || !cfg.UI.Color || util.GetEnv("NO_COLOR") != "" {
		color.NoColor = true
	}

	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:       o.debug || util.GetEnvBool("DEBUG", false),
		Prefix:      "kgview",
		NoTimestamp: true,
	}))
	return nil
}

func (o *options) client() *client.Client {
	return client.New(o.cfg.Server.URL)
}

// open returns the selected graph, from the server or the built-in demo.
func (o *options) open(ctx context.Context) (*explorer.Selection, error) {
	if o.offline {
		return &explorer.Selection{
			Name:  graph.DemoName,
			Names: []string{graph.DemoName},
			Graph: graph.Demo(),
		}, nil
	}

	c := o.client()
	sel, err := util.RetryWithContext(ctx, openTries, openWait, func(ctx context.Context) (*explorer.Selection, error) {
		return explorer.Open(ctx, c, o.cfg.Server.Graph)
	})
	if err != nil {
		if errors.Is(err, client.ErrNetwork) {
			err = errors.WithHint(err, "start the server with `go run ./cmd/server` or pass --offline")
		}
		return nil, err
	}
	if o.cfg.Server.Graph != "" && sel.Name != o.cfg.Server.Graph {
		logger.Warn("Graph not found, opened the first one instead", "wanted", o.cfg.Server.Graph, "opened", sel.Name)
	}
	return sel, nil
}

func (o *options) controller(sel *explorer.Selection, asker explorer.Asker, onFrame explorer.FrameFunc) *explorer.Controller {
	return explorer.New(sel.Graph, explorer.Options{
		Name:              sel.Name,
		Layout:            o.cfg.Layout,
		NeighborhoodDepth: o.cfg.Explorer.NeighborhoodDepth,
		StatusTimeout:     o.cfg.Explorer.StatusTimeout.Duration,
		Asker:             asker,
		OnFrame:           onFrame,
	})
}

// printStatus writes the controller's status line, colored by level.
func printStatus(w io.Writer, st explorer.Status) {
	if st.Text == "" {
		return
	}
	switch st.Level {
	case explorer.LevelOK:
		fmt.Fprintf(w, "%s %s\n", ui.StatusIcon(true), st.Text)
	case explorer.LevelWarn:
		fmt.Fprintf(w, "%s %s\n", ui.WarnIcon(), ui.Warn.Sprint(st.Text))
	default:
		ui.Info.Fprintln(w, st.Text)
	}
}
