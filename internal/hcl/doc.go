// Package hcl provides the HCL implementation of the job file loader
// defined in the `config` package.
//
// A job file holds `config` blocks, whose attributes are assigned on the
// config Store, and `task "<variant>" "<name>"` blocks in execution order.
// Task attributes are kept as HCL expressions and evaluated only when the
// task is about to run, with two variables in scope:
//
//	task.<name>.output   the output of a task that already ran
//	config.<KEY>         a value from the config Store
//
// An attribute that is exactly `task.<name>.output` receives the Go value
// unchanged, so tables and byte payloads flow between tasks without a round
// trip through cty.
package hcl
