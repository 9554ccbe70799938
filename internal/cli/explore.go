package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/kgview/internal/ui"
	"github.com/OFFIS-RIT/kgview/pkg/explorer"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// errReported is returned after a failure was already printed as status.
var errReported = errors.New("command failed")

func pathCmd(opts *options) *cobra.Command {
	var directed bool

	cmd := &cobra.Command{
		Use:   `path "A -> B"`,
		Short: "Find a shortest path between two concepts",
		Example: `  kgview path "Graph -> Dijkstra"
  kgview path --directed "Topological Sort, Graph"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			c := opts.controller(sel, nil, nil)
			if directed {
				c.ToggleDirected()
			}

			out := cmd.OutOrStdout()
			path := c.FindPath(strings.Join(args, " "))
			printStatus(out, c.Status())
			if path == nil {
				return errReported
			}
			fmt.Fprintf(out, "  %s\n", ui.Subtle.Sprintf("%d hops", len(path)-1))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&directed, "directed", "d", false, "Follow directed edges only along their direction")
	return cmd
}

func neighborsCmd(opts *options) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "neighbors ID",
		Short: "List the concepts around a node",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			g := sel.Graph
			id := strings.Join(args, " ")
			root, ok := g.ByID(id)
			if !ok {
				printStatus(cmd.OutOrStdout(), explorer.Status{Text: fmt.Sprintf("No node named %q", id), Level: explorer.LevelWarn})
				return errReported
			}
			if depth <= 0 {
				depth = opts.cfg.Explorer.NeighborhoodDepth
			}

			members := g.Neighborhood(id, depth)
			ids := make([]string, 0, len(members))
			for m := range members {
				if m != id {
					ids = append(ids, m)
				}
			}
			sort.Strings(ids)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n\n", ui.Brand.Sprint(root.ID), ui.Subtle.Sprint(root.Cat))
			rows := make([][]string, 0, len(ids))
			for _, m := range ids {
				n, _ := g.ByID(m)
				rows = append(rows, []string{n.ID, n.Cat})
			}
			ui.Table(out, []string{"NODE", "CATEGORY"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "Number of hops (default from config)")
	return cmd
}

func legendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "legend",
		Aliases: []string{"categories"},
		Short:   "Show the categories and their colors",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			c := opts.controller(sel, nil, nil)
			rows := [][]string{}
			for _, e := range c.Legend() {
				rows = append(rows, []string{ui.Swatch(e.Color) + " " + e.Category, e.Color})
			}
			ui.Table(cmd.OutOrStdout(), []string{"CATEGORY", "COLOR"}, rows)
			return nil
		},
	}
}

func layoutCmd(opts *options) *cobra.Command {
	var (
		steps  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Run the force layout until it settles and print node positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			if steps <= 0 {
				steps = opts.cfg.Explorer.SettleSteps
			}
			c := opts.controller(sel, nil, nil)
			ticks := c.Settle(steps)
			positions := c.Positions()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(positions)
			}

			rows := make([][]string, 0, len(positions))
			for _, p := range positions {
				rows = append(rows, []string{
					p.ID,
					strconv.FormatFloat(p.X, 'f', 1, 64),
					strconv.FormatFloat(p.Y, 'f', 1, 64),
				})
			}
			ui.Table(out, []string{"NODE", "X", "Y"}, rows)
			settled := c.Frame().Settled
			fmt.Fprintf(out, "\n  %s %s\n", ui.StatusIcon(settled), ui.Subtle.Sprintf("%d steps", ticks))
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "Maximum simulation steps (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print positions as JSON")
	return cmd
}

func selfTestCmd(opts *options) *cobra.Command {
	var showDemo bool

	cmd := &cobra.Command{
		Use:     "selftest",
		Aliases: []string{"self-test"},
		Short:   "Check path search, adjacency and the markdown pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			c := opts.controller(sel, nil, nil)
			report := c.SelfTest()

			out := cmd.OutOrStdout()
			printStatus(out, c.Status())
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "  %s %s\n", ui.StatusIcon(false), issue)
			}
			if showDemo {
				fmt.Fprintln(out)
				fmt.Fprintln(out, c.Answer().HTML)
			}
			if !report.OK {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showDemo, "html", false, "Print the rendered demo answer")
	return cmd
}
