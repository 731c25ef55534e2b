package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stealthcompany.com/nutrireg/internal/patient"
)

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var (
		sub       patient.Submission
		scanImage string
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register today's consultation",
		Long: "Stores one consultation dated today in the clinic time zone. " +
			"With --scan the card photo pre-fills name and NSS; explicit flags win, " +
			"and the result is shown for confirmation before it is stored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}

			if scanImage != "" {
				image, err := readInput(cmd, scanImage)
				if err != nil {
					return err
				}
				res, err := a.Service.Scan(cmd.Context(), image)
				if err != nil {
					return fmt.Errorf("scan failed, pass --name and --nss: %w", err)
				}
				if !cmd.Flags().Changed("name") {
					sub.Name = res.Name
				}
				if !cmd.Flags().Changed("nss") {
					sub.Identifier = res.Identifier
				}

				printSubmission(cmd, sub, res.Warnings)
				if !assumeYes {
					if !confirm(cmd, "Store this record? [y/N]: ") {
						fmt.Fprintln(cmd.OutOrStdout(), "Not stored")
						return nil
					}
				}
			}

			rec, err := a.Service.Register(cmd.Context(), sub)
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, rec)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRecords([]patient.Record{rec}))
			return nil
		},
	}

	cmd.Flags().StringVar(&sub.Name, "name", "", "Patient name")
	cmd.Flags().StringVar(&sub.Identifier, "nss", "", "Social security number")
	cmd.Flags().StringVar(&sub.Type, "type", "nuevo", "Consultation type (nuevo, subsecuente)")
	cmd.Flags().StringVar(&sub.Note, "note", "", "Free-text note")
	cmd.Flags().StringVar(&scanImage, "scan", "", "Pre-fill name and NSS from a card photo")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Store scanned values without asking")
	return cmd
}

// printSubmission shows what will be stored after a card pre-fill
func printSubmission(cmd *cobra.Command, sub patient.Submission, warnings []string) {
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"Nombre", sub.Name},
		{"NSS", sub.Identifier},
		{"Tipo", sub.Type},
		{"Nota", sub.Note},
	}
	fmt.Fprintln(out, renderTable([]string{"Campo", "Valor"}, rows, nil))
	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}

// confirm reads one answer line; anything but yes (or si) declines
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}
