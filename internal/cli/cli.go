package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/taskgrid/internal/app"
)

// EnvPrefix prefixes the environment variables that override flags, e.g.
// TASKGRID_LOG_LEVEL for --log-level.
const EnvPrefix = "TASKGRID"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Flag values are layered over TASKGRID_* environment variables and an
// optional .taskgrid.{yaml,toml,json} config file.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	v := viper.New()

	var cfg *app.Config
	cmd := newCommand(v, func(targets []string) error {
		c, err := configFrom(v, targets)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	})
	// A nil slice makes cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	if err := cmd.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if cfg == nil {
		// Help was requested.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

func newCommand(v *viper.Viper, run func(targets []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskgrid [flags] [targets...]",
		Short: "Run tasks and generators declared in HCL taskfiles",
		Long: `taskgrid runs the tasks declared in HCL taskfiles.

Targets are task expressions: "build", "build,test", "docs:api" or "docs".
A bare generator name runs its "default" task. Without targets the
"default" task runs.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v)
		},
		RunE: func(_ *cobra.Command, targets []string) error {
			return run(targets)
		},
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "config file (default is ./.taskgrid.{yaml,toml,json})")
	flags.StringP("file", "f", "Taskfile.hcl", "Path to a taskfile or a directory of .hcl taskfiles.")
	flags.BoolP("parallel", "p", false, "Run the targets concurrently.")
	flags.Int("concurrency", 0, "Maximum concurrent tasks per parallel batch. 0 is unbounded.")
	flags.StringSlice("skip", nil, "Tasks to treat as disabled for this run.")
	flags.BoolP("list", "l", false, "List scopes and their tasks, then exit.")
	flags.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	_ = v.BindPFlags(flags)

	return cmd
}

func initConfig(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		return v.ReadInConfig()
	}
	v.SetConfigName(".taskgrid")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

func configFrom(v *viper.Viper, targets []string) (*app.Config, error) {
	return app.NewConfig(app.Config{
		TaskfilePath:    v.GetString("file"),
		LogFormat:       strings.ToLower(v.GetString("log-format")),
		LogLevel:        strings.ToLower(v.GetString("log-level")),
		HealthcheckPort: v.GetInt("healthcheck-port"),
		Parallel:        v.GetBool("parallel"),
		Concurrency:     v.GetInt("concurrency"),
		Skip:            v.GetStringSlice("skip"),
		Targets:         targets,
		List:            v.GetBool("list"),
	})
}
