// Package context holds the state shared by the CLI commands: the process
// environment, the configuration, the database and the standard streams.
//
// It is separate from the app package so that the cli package can use it
// without an import cycle.
package context
