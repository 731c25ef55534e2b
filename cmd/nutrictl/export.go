package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		filters filterFlags
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write consultations to an XLSX file",
		Long:  "Accepts the same filters as list. Without --out the file is named after today's date in the current directory.",
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
			data, name, err := a.Service.Export(cmd.Context(), f)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = name
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", path, describeFilter(f))
			return nil
		},
	}
	filters.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	return cmd
}
