package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gwspec/internal/ledger"
)

func newVersionCmd(a *app) *cobra.Command {
	var next bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version recorded in the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := ledger.New(a.settings.LedgerPath, a.log).Read()
			if next {
				v = ledger.Increment(v)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&next, "next", false, "show the version the next generate would reserve, without writing it")
	return cmd
}
