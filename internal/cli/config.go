package cli

import (
	"fmt"
	"os"

	"github.com/OFFIS-RIT/kgview/internal/ui"
	"github.com/OFFIS-RIT/kgview/pkg/config"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func configCmd(opts *options) *cobra.Command {
	var (
		write    bool
		defaults bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration, or write it to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if defaults {
				cfg = config.Default()
			}

			if !write {
				return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
			}

			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !defaults {
				ui.Subtle.Fprintf(cmd.ErrOrStderr(), "  overwriting %s\n", path)
			}
			if err := config.Save(path, cfg); err != nil {
				return errors.Wrapf(err, "write config %s", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.StatusIcon(true), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "Write to the config file instead of printing")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Use the built-in defaults")
	return cmd
}
