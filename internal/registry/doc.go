// Package registry provides the central "glue" for the module system.
//
// The Registry maps the variant names used in job files (e.g. "sql_query")
// to compiled task variants, and resource kinds (e.g. "sql-session") to the
// clients that open and close them. Modules populate it at startup; it is
// then validated so that every variant's resource kind has a client,
// preventing a class of failures that would otherwise surface mid-run.
package registry
