package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cerebro/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var moduleFilter string
	var entryFilter string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded metric transitions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.HistoryQuery(ipc.HistoryQueryRequest{
					Module: moduleFilter,
					Entry:  entryFilter,
					Limit:  limit,
				})
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Records) == 0 {
					fmt.Fprintln(stdout, "No history records found")
					return nil
				}

				rows := make([][]string, 0, len(resp.Records))
				for _, record := range resp.Records {
					rows = append(rows, []string{
						record.RecordedAt,
						record.Module,
						record.Entry,
						record.Kind,
						record.Old,
						record.New,
					})
				}
				table := renderTable([]string{"Recorded", "Module", "Entry", "Kind", "Old", "New"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight})
				fmt.Fprintln(stdout, table)
				fmt.Fprintln(stdout, countNoun(len(resp.Records), "record", "records"))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&moduleFilter, "module", "m", "", "Filter by module name")
	cmd.Flags().StringVarP(&entryFilter, "entry", "e", "", "Filter by entry path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of records to show")
	return cmd
}
