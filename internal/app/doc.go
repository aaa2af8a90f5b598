// Package app contains the core application logic. It loads job files,
// binds their tasks to the registered variants and runs the resulting plan,
// decoupled from any specific entrypoint like a CLI.
package app
