package main

import (
	"fmt"
	"os"

	"github.com/iwvelando/pipeline-forecast/internal/pipeline"
	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/spf13/cobra"
)

func templateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an example pipeline workbook",
		Long: `Write a starter workbook with one sheet per example opportunity, laid out
the way the forecast command reads it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := pipeline.CheckExtension(out); err != nil {
				return err
			}

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := pipeline.WriteTemplate(file, pipeline.ExampleOpportunities()); err != nil {
				_ = file.Close()
				return fmt.Errorf("failed to write template: %w", err)
			}
			if err := file.Close(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Wrote "+out))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", constants.DefaultTemplateFile, "path of the workbook to write")
	return cmd
}
