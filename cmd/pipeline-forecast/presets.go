package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/iwvelando/pipeline-forecast/pkg/clusters"
	"github.com/spf13/cobra"
)

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the probability presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writePresets(cmd.OutOrStdout())
		},
	}
}

func writePresets(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s", titleStyle.Render("Cluster"))
	for _, name := range clusters.PresetNames() {
		fmt.Fprintf(w, "\t%s", titleStyle.Render(name))
	}
	fmt.Fprintln(w)

	tables := make([]clusters.Table, 0, len(clusters.PresetNames()))
	for _, name := range clusters.PresetNames() {
		table, err := clusters.Preset(name)
		if err != nil {
			return err
		}
		tables = append(tables, table)
	}

	for _, cluster := range clusters.Known {
		fmt.Fprint(w, cluster)
		for _, table := range tables {
			fmt.Fprintf(w, "\t%.0f%%", table.Weight(cluster))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
