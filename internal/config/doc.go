// Package config holds the two kinds of configuration bigrays works with.
//
// The Store is the process-wide key/value configuration read by resource
// clients and by template substitution. It is populated from BIGRAYS_
// prefixed environment variables and from explicit assignments, which always
// win.
//
// The Model is the format-agnostic representation of one or more job files.
// Concrete loaders, such as for HCL and YAML, live in separate packages and
// produce a Model whose attribute values are deferred Expressions.
package config
