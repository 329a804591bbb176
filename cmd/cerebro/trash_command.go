package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cerebro/internal/ipc"
)

func newTrashCommand(ctx *commandContext) *cobra.Command {
	trashCmd := &cobra.Command{
		Use:   "trash",
		Short: "Trash maintenance",
	}

	trashCmd.AddCommand(&cobra.Command{
		Use:   "empty",
		Short: "Empty the XDG trash via the trash module",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TrashEmpty()
				if err != nil {
					return err
				}
				if resp.Emptied {
					fmt.Fprintln(cmd.OutOrStdout(), "Trash emptied")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Trash empty request sent")
				return nil
			})
		},
	})

	return trashCmd
}
