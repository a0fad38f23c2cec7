// Package main hosts the mapwatch CLI entrypoint and command graph.
//
// The Cobra-based command tree covers foreground monitoring, ledger
// status inspection, offline filename classification, workspace history
// lookups, roster review, and configuration scaffolding. It centralizes
// configuration resolution and roster loading so subcommands can focus
// on presentation.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
