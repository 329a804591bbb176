// Package modules defines the contract between metric collectors and the
// rest of the daemon.
//
// A Collector samples one subsystem (cpu, memory, battery, brightness,
// trash) and returns a Snapshot: a flat map of entry paths to rendered
// values plus the module's aggregate json and shell views. The Runner wraps
// a Collector with a polling loop, diffs consecutive snapshots into Change
// records for the trigger engine and history store, and publishes a
// module-updated event whenever the entry set changes shape so the
// filesystem can rebuild the subtree.
//
// Values are always strings as rendered in the filesystem; an unknown value
// is the literal "?".
package modules
