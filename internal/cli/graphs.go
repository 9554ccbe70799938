package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/OFFIS-RIT/kgview/internal/ui"
	"github.com/OFFIS-RIT/kgview/pkg/client"
	"github.com/OFFIS-RIT/kgview/pkg/explorer"
	"github.com/OFFIS-RIT/kgview/pkg/graph"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func graphsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graphs",
		Short: "List, download and upload stored graphs",
	}
	cmd.AddCommand(
		graphsListCmd(opts),
		graphsDownloadCmd(opts),
		graphsUploadCmd(opts),
	)
	return cmd
}

func graphsListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := opts.client().ListGraphs(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				ui.Subtle.Fprintln(out, "  no graphs stored")
				return nil
			}
			for _, name := range names {
				marker := " "
				if name == opts.cfg.Server.Graph {
					marker = ui.Brand.Sprint("*")
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}
			return nil
		},
	}
}

func graphsDownloadCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "download [NAME]",
		Aliases: []string{"get"},
		Short:   "Download a graph, by default the configured one",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.cfg.Server.Graph = args[0]
			}
			sel, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			name, data := opts.controller(sel, nil, nil).Download()
			if data == nil {
				return errors.Newf("serialize %s", name)
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if output == "" {
				output = name
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return errors.Wrapf(err, "write %s", output)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.StatusIcon(true), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file, "-" for stdout (default the graph name)`)
	return cmd
}

func graphsUploadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload graph documents and open the first one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]client.Upload, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return errors.Wrapf(err, "read %s", path)
				}
				if _, err := graph.Parse(data); err != nil {
					return errors.WithHint(errors.Wrapf(err, "%s", path), `a graph document looks like {"nodes":[{"id":"A","cat":"X"}],"links":[{"s":"A","t":"B"}]}`)
				}
				files = append(files, client.Upload{Name: filepath.Base(path), Data: data})
			}

			sel, err := explorer.Upload(cmd.Context(), opts.client(), files)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintf(out, "%s %s\n", ui.StatusIcon(true), f.Name)
			}
			ui.Subtle.Fprintf(out, "  opened %s: %d nodes, %d edges\n", sel.Name, len(sel.Graph.Nodes), len(sel.Graph.Edges))
			return nil
		},
	}
}
