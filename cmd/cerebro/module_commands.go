package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cerebro/internal/ipc"
)

func newModulesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List registered modules and their entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				names, err := client.ModuleList()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(names.Names) == 0 {
					fmt.Fprintln(stdout, "No modules enabled")
					return nil
				}

				rows := make([][]string, 0, len(names.Names))
				for _, name := range names.Names {
					entries, err := client.ModuleEntries(name)
					if err != nil {
						return err
					}
					for _, entry := range entries.Entries {
						mode := "read"
						switch {
						case entry.WriteOnly:
							mode = "write-only"
						case entry.Writable:
							mode = "read-write"
						}
						rows = append(rows, []string{name, entry.Path, mode})
					}
				}
				table := renderTable([]string{"Module", "Entry", "Mode"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft})
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}
}

func newReadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "read <module> [entry]",
		Short: "Read module entry values",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			module := strings.TrimSpace(args[0])
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				if len(args) == 2 {
					resp, err := client.ModuleRead(module, strings.TrimSpace(args[1]))
					if err != nil {
						return err
					}
					fmt.Fprintln(stdout, resp.Value)
					return nil
				}

				entries, err := client.ModuleEntries(module)
				if err != nil {
					return err
				}
				for _, entry := range entries.Entries {
					if entry.WriteOnly {
						continue
					}
					resp, err := client.ModuleRead(module, entry.Path)
					if err != nil {
						return err
					}
					fmt.Fprintf(stdout, "%s %s\n", entry.Path, resp.Value)
				}
				return nil
			})
		},
	}
}

func newJSONCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "json <module>",
		Short: "Render a module's JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ModuleJSON(strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), ensureTrailingNewline(resp.JSON))
				return nil
			})
		},
	}
}

func newShellCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shell <module>",
		Short: "Render a module's shell variable export block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ModuleShell(strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), ensureTrailingNewline(resp.Shell))
				return nil
			})
		},
	}
}

func ensureTrailingNewline(value string) string {
	if value == "" || strings.HasSuffix(value, "\n") {
		return value
	}
	return value + "\n"
}
