// Package notifications delivers push notifications for collection
// milestones via ntfy. When no topic is configured a noop service is
// returned so callers never branch on configuration.
package notifications
