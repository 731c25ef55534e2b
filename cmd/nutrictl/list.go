package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered consultations",
		Long:  "Without flags lists the recent summary window. --nss wins over --date, which wins over --from/--to and --days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			f, err := filters.filter(cmd, a.Service)
			if err != nil {
				return err
			}
			records, err := a.Service.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, records)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No records (%s)\n", describeFilter(f))
				return nil
			}
			fmt.Fprintln(out, renderRecords(records))
			fmt.Fprintf(out, "%d record(s), %s\n", len(records), describeFilter(f))
			return nil
		},
	}
	filters.bind(cmd)
	return cmd
}
