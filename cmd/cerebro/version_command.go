package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

const fallbackVersion = "0.1.0"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the cerebro version",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "cerebro %s\n", resolveVersion())
			return nil
		},
	}
}

func resolveVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallbackVersion
	}
	if version := info.Main.Version; version != "" && version != "(devel)" {
		return version
	}
	return fallbackVersion
}
