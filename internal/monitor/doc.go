// Package monitor runs the collection-period watch: it observes the
// inbox for new archives, resolves each to a work unit and category,
// files accepted archives into the dated workspace tree, and tracks
// satisfaction until every unit has delivered or the deadline passes.
//
// All state mutation happens on a single dispatch goroutine fed by one
// buffered event channel; the watcher and tickers only ever send into
// that channel.
package monitor
