package cli

import (
	"github.com/litetable/litetable-scan/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	debug      bool
	cfg        *config.Config
}

// NewRootCommand returns the tabletscan command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "tabletscan",
		Short:         "Serve and scan sorted key-value tablets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if opts.debug || cfg.Debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to the configuration file (default ~/.litetable/tabletscan.yaml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCommand(opts), newScanCommand(opts), newDescribeCommand())
	return root
}
