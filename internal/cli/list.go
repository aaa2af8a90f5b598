package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/CadentTech/bigrays/internal/app"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/spf13/cobra"
)

func newTasksCmd(env *Env) *cobra.Command {
	flags := &jobFlags{}
	cmd := &cobra.Command{
		Use:   "tasks <path>...",
		Short: "List the tasks a run would execute, in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config(args)
			if err != nil {
				return err
			}
			// Logs go nowhere unless asked for; the listing is the output.
			if !cmd.Flags().Changed("log-level") {
				cfg.LogLevel = "error"
			}
			a := app.NewApp(cmd.ErrOrStderr(), cfg, env.Store, env.Modules...)
			_, plan, err := a.Plan(cmd.Context())
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tVARIANT\tRESOURCE")
			for i, d := range plan {
				kind := string(d.Resource)
				if kind == "" {
					kind = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, d.Name, d.Variant, kind)
			}
			return w.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}

func newVariantsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the task variants compiled into this binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			modules := env.Modules
			if len(modules) == 0 {
				modules = app.CoreModules()
			}
			reg := registry.New(modules...)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VARIANT\tRESOURCE\tREQUIRED\tDESCRIPTION")
			for _, name := range reg.VariantNames() {
				v, _ := reg.Variant(name)
				kind := string(v.Resource)
				if kind == "" {
					kind = "-"
				}
				required := "-"
				if len(v.Required) > 0 {
					required = fmt.Sprint(v.Required)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, kind, required, v.Description)
			}
			return w.Flush()
		},
	}
}
