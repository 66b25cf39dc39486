// Package main hosts the gcexport CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, merges flag overrides,
// sets up structured logging, and hands a fully validated option set to the
// export engine in internal/export. Subcommands cover configuration
// scaffolding and version reporting; the root command is the export run
// itself.
package main
