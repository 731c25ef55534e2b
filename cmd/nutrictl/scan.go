package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stealthcompany.com/nutrireg/internal/intake"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var showText bool

	cmd := &cobra.Command{
		Use:   "scan IMAGE",
		Short: "OCR an ID card photo and show the pre-filled fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			image, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := a.Service.Scan(cmd.Context(), image)
			if err != nil {
				return fmt.Errorf("scan failed, enter the fields manually: %w", err)
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, res)
			}
			printScan(cmd, res, showText)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showText, "text", false, "Also print the raw OCR text")
	return cmd
}

func printScan(cmd *cobra.Command, res intake.ScanResult, showText bool) {
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"Nombre", res.Name},
		{"NSS", res.Identifier},
	}
	if res.IdentifierSource != "" {
		rows = append(rows, []string{"Origen NSS", string(res.IdentifierSource)})
	}
	fmt.Fprintln(out, renderTable([]string{"Campo", "Valor"}, rows, nil))
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if showText {
		fmt.Fprintln(out)
		fmt.Fprintln(out, res.Text)
	}
}
