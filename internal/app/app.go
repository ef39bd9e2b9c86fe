package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/generator"
	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	handlers   *handlers.Handlers
	model      *config.Model
	converter  config.Converter
	root       *generator.Generator
	reporter   *reporter
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads the
// taskfiles, checks that every task names a known handler and builds the
// root generator. Without modules the built-in ones are used.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...handlers.Module) (*App, error) {
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	if err != nil {
		return nil, err
	}
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, converter, err := loader.Load(ctx, cfg.TaskfilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load taskfiles: %w", err)
	}
	logger.Debug("Taskfiles loaded and translated into unified model.")

	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	h := handlers.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "handlers", h.Names())

	if err := validateHandlers(h, model.Tasks, model.Generators); err != nil {
		return nil, err
	}

	a := &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		handlers:  h,
		model:     model,
		converter: converter,
		root:      generator.New("", nil),
	}
	if err := a.populate(a.root, model.Tasks, model.Generators); err != nil {
		return nil, err
	}
	a.reporter = newReporter(a.root)

	tasks, generators := model.Count()
	logger.Debug("Root generator built.", "tasks", tasks, "generators", generators)
	return a, nil
}

// Root returns the application's root generator. This is primarily for testing.
func (a *App) Root() *generator.Generator {
	return a.root
}

// Summary returns the task outcomes observed by the most recent runs.
func (a *App) Summary() Summary {
	return a.reporter.summarize()
}

// populate registers declared tasks and child generators on g.
func (a *App) populate(g *generator.Generator, tasks []*config.Task, generators []*config.Generator) error {
	for _, t := range tasks {
		args := []any{t.Options(), t.DependsOn}
		if t.Handler != "" {
			args = append(args, a.work(t))
		}
		if _, err := g.Task(t.Name, args...); err != nil {
			return fmt.Errorf("registering task %s: %w", t.Name, err)
		}
	}
	for _, decl := range generators {
		factory := generator.FactoryFunc(func(child *generator.Generator) error {
			return a.populate(child, decl.Tasks, decl.Generators)
		})
		if _, err := g.Register(decl.Name, decl.Options(), factory); err != nil {
			return fmt.Errorf("registering generator %s: %w", decl.Name, err)
		}
	}
	return nil
}

// work binds a declared task to its handler. Arguments are evaluated on
// every run so they observe the environment at that moment.
func (a *App) work(t *config.Task) task.WorkFunc {
	fn, _ := a.handlers.Get(t.Handler)
	return func(ctx context.Context, tc *task.Context) error {
		args, err := a.converter.Arguments(ctx, t.Arguments)
		if err != nil {
			return fmt.Errorf("task %s: %w", tc.Name, err)
		}
		return fn(ctx, tc, args)
	}
}

func validateHandlers(h *handlers.Handlers, tasks []*config.Task, generators []*config.Generator) error {
	for _, t := range tasks {
		if err := h.Validate(t.Handler); err != nil {
			return fmt.Errorf("task %s: %w", t.Name, err)
		}
	}
	for _, g := range generators {
		if err := validateHandlers(h, g.Tasks, g.Generators); err != nil {
			return fmt.Errorf("generator %s: %w", g.Name, err)
		}
	}
	return nil
}
