// Package notifications delivers daemon events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Trigger and error publications honor their own config switches so
// a topic can carry only the event classes the user cares about.
package notifications
