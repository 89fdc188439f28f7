package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/NashC/cashflow-analysis/internal/sample"
)

func newSampleCommand() *cobra.Command {
	var (
		months int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "sample <output.csv>",
		Short: "Generate sample bank activity in Chase CSV format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			count, err := sample.New(months, seed).WriteFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Generated %d transactions in %s\n", count, args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&months, "months", 6, "months of activity to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")

	return cmd
}
