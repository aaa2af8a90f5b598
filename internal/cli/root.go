package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the bigrays command tree.
func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "bigrays",
		Short: "Run ETL jobs as ordered task lists",
		Long: `bigrays runs the tasks declared in HCL or YAML job files strictly in order,
opening each database, object store or notification client once per
consecutive run of tasks that need it.

Configuration is read from BIGRAYS_* environment variables, the job files'
config sections and --set flags, in increasing order of precedence.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(env.Out)
	root.SetErr(env.Out)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%s", err.Error())
	})

	root.AddCommand(newRunCmd(env))
	root.AddCommand(newTasksCmd(env))
	root.AddCommand(newVariantsCmd(env))
	return root
}
