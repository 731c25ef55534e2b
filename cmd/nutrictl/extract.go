package main

import (
	"github.com/spf13/cobra"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [FILE|-]",
		Short: "Extract name and NSS from OCR text",
		Long:  "Runs the card extractor over text already produced by an OCR engine. Reads stdin when FILE is omitted or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			text, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			a, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			res := a.Service.Extract(string(text))
			if ctx.jsonFlag {
				return writeJSON(cmd, res)
			}
			printScan(cmd, res, false)
			return nil
		},
	}
}
