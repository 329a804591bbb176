// Package triggers loads user-defined trigger rules and runs their commands
// when metric entries are created, updated, or deleted.
//
// Rules live in *.triggers files, one per line:
//
//	U /battery/percent < 15 notify-send "battery low"
//
// The first field is the change kind (C, D, or U), the second a regular
// expression matched against /<module>/<entry>, the third an operator
// (*, <, >, !=, ==), the fourth a literal threshold (or *), and the rest the
// shell command. Commands may chain with ';' and are split with shell quoting
// rules. The < and > operators fire only when an integer value crosses the
// threshold, never while it stays on one side.
package triggers
