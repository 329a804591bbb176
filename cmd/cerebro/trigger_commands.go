package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cerebro/internal/ipc"
	"cerebro/internal/logging"
	"cerebro/internal/triggers"
)

func newTriggersCommand(ctx *commandContext) *cobra.Command {
	triggersCmd := &cobra.Command{
		Use:   "triggers",
		Short: "Inspect trigger rules",
	}

	triggersCmd.AddCommand(newTriggersListCommand(ctx))
	triggersCmd.AddCommand(newTriggersTestCommand(ctx))
	return triggersCmd
}

func newTriggersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the trigger rules loaded by the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TriggerList()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Triggers) == 0 {
					fmt.Fprintln(stdout, "No trigger rules loaded")
					return nil
				}
				fmt.Fprintln(stdout, renderTriggerTable(resp.Triggers))
				return nil
			})
		},
	}
}

func newTriggersTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test <kind> <path> <old> <new>",
		Short: "Dry-run a change event against the local trigger rules",
		Long: "Loads the trigger rules from the configured trigger directory and " +
			"reports which rules would fire for the given change without running " +
			"their commands. Kind is C (create), D (delete), or U (update).",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := triggers.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("invalid change kind %q (expected C, D, or U)", args[0])
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rules, err := triggers.Load(cfg.Paths.TriggerDir, logging.NewNop())
			if err != nil {
				return err
			}
			engine := triggers.NewEngine(rules, logging.NewNop())
			matched := engine.Match(kind, args[1], args[2], args[3])

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Loaded %s from %s\n", countNoun(len(rules), "rule", "rules"), cfg.Paths.TriggerDir)
			if len(matched) == 0 {
				fmt.Fprintln(stdout, "No rules would fire")
				return nil
			}
			fmt.Fprintf(stdout, "%s would fire:\n", countNoun(len(matched), "rule", "rules"))
			for _, rule := range matched {
				fmt.Fprintf(stdout, "  %s:%d: %s\n", rule.Source, rule.Line, rule.Command)
			}
			return nil
		},
	}
}

func renderTriggerTable(rules []ipc.Trigger) string {
	rows := make([][]string, 0, len(rules))
	for _, rule := range rules {
		condition := "*"
		if rule.Operator != string(triggers.OperatorNone) {
			condition = rule.Operator + " " + rule.Value
		}
		rows = append(rows, []string{
			rule.Source + ":" + strconv.Itoa(rule.Line),
			rule.Kind,
			rule.Path,
			condition,
			truncateCommand(rule.Command),
		})
	}
	return renderTable([]string{"Source", "Kind", "Path", "Condition", "Command"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft})
}

func truncateCommand(command string) string {
	command = strings.TrimSpace(command)
	if len(command) <= 60 {
		return command
	}
	return command[:57] + "..."
}
