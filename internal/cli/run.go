package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/CadentTech/bigrays/internal/app"
	"github.com/spf13/cobra"
)

// jobFlags are shared by the commands that load job files.
type jobFlags struct {
	tasks           []string
	settings        []string
	logLevel        string
	logFormat       string
	healthcheckPort int
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.tasks, "task", "t", nil, "Run only the named task(s), in the given order. Repeatable.")
	cmd.Flags().StringArrayVar(&f.settings, "set", nil, "Set a config value as KEY=VALUE. Repeatable; wins over job files and the environment.")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
}

func (f *jobFlags) config(paths []string) (*app.Config, error) {
	settings, err := parseSettings(f.settings)
	if err != nil {
		return nil, err
	}
	cfg, err := app.NewConfig(app.Config{
		JobPaths:        paths,
		Tasks:           f.tasks,
		Settings:        settings,
		LogLevel:        f.logLevel,
		LogFormat:       f.logFormat,
		HealthcheckPort: f.healthcheckPort,
	})
	if err != nil {
		return nil, usageError("%s", err.Error())
	}
	return cfg, nil
}

func newRunCmd(env *Env) *cobra.Command {
	flags := &jobFlags{}
	cmd := &cobra.Command{
		Use:   "run <path>...",
		Short: "Run the tasks declared in job files",
		Long:  `Loads every .hcl, .yaml and .yml file under the given paths and runs the declared tasks in order.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config(args)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a := app.NewApp(cmd.OutOrStdout(), cfg, env.Store, env.Modules...)
			if err := a.Run(ctx); err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&flags.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	return cmd
}
