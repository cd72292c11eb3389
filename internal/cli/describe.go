package cli

import (
	"encoding/json"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/spf13/cobra"
)

func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [operator]",
		Short: "Document the available iterator operators",
		Args:  cobra.MaximumNArgs(1),
		// describing operators needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := iterators.NewRegistry()
			names := registry.Names()
			if len(args) == 1 {
				names = args
			}

			out := make([]iterators.Descriptor, 0, len(names))
			for _, name := range names {
				d, err := registry.Describe(name)
				if err != nil {
					return err
				}
				out = append(out, d)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
