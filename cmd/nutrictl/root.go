package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nutrictl",
		Short:         "Patient registry for nutrition consultations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.storageFlag, "storage", "", "Storage backend override (postgres, sqlite, couchbase, memory)")
	flags.StringVar(&ctx.sqliteFlag, "sqlite", "", "SQLite database path override")
	flags.StringVar(&ctx.ocrFlag, "ocr", "", "OCR backend override (ocrspace, tesseract, none)")
	flags.BoolVar(&ctx.jsonFlag, "json", false, "Print JSON instead of tables")
	flags.BoolVarP(&ctx.verboseFlag, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newRegisterCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))

	return rootCmd
}
