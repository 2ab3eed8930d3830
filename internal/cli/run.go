package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/robbyt/go-scriptbridge/engines/registry"
	"github.com/robbyt/go-scriptbridge/internal/config"
	"github.com/robbyt/go-scriptbridge/platform"
	"github.com/robbyt/go-scriptbridge/platform/data"
	"github.com/robbyt/go-scriptbridge/platform/script/loader"
	"github.com/robbyt/go-scriptbridge/platform/script/loader/httpauth"
)

// ErrScriptsFailed is returned by run when at least one script did not succeed.
var ErrScriptsFailed = errors.New("one or more scripts failed")

// closer is implemented by runtimes holding resources, such as a compiled WASM module.
type closer interface {
	Close(ctx context.Context) error
}

func newRunCommand(reg *registry.Registry) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Run script files, URLs or stdin (-) and print their results",
		Example: `  bridgerun run hello.star
  bridgerun run --runtime risor -o text a.risor b.risor
  echo 'return 1 + 1' | bridgerun run -r osascript -
  bridgerun run -e 'result = 6 * 7'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inline, err := cmd.Flags().GetStringArray("eval")
			if err != nil {
				return err
			}
			if len(args) == 0 && len(inline) == 0 {
				return errors.New("no scripts given: pass files, URLs, - for stdin, or --eval")
			}

			cfgFile, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			loaders, err := buildLoaders(cfg, args, inline, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return run(cmd.Context(), reg, cfg, loaders, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringP("runtime", "r", config.DefaultRuntime, "runtime to use (see `bridgerun runtimes`)")
	f.StringP("output", "o", config.DefaultOutput, "output format (json|yaml|text)")
	f.Duration("timeout", config.DefaultTimeout, "per-script timeout, 0 for none")
	f.Int("max-depth", config.DefaultMaxDepth, "maximum container nesting in results")
	f.Int("concurrency", config.DefaultConcurrency, "scripts run at the same time")
	f.String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	f.String("wasm-file", "", "extism bridge plugin")
	f.String("entry-point", "", "extism plugin function")
	f.String("osascript-command", "", "osascript binary")
	f.String("http-token", "", "bearer token for scripts fetched over http(s)")
	f.StringArrayP("eval", "e", nil, "inline script text, may be repeated")

	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("runtime", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return reg.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func buildLoaders(cfg *config.Config, args, inline []string, stdin io.Reader) ([]loader.Loader, error) {
	httpOpts := loader.DefaultHTTPOptions()
	httpOpts.Timeout = cfg.HTTP.Timeout
	switch {
	case cfg.HTTP.Token != "":
		httpOpts.Auth = httpauth.NewBearerAuth(cfg.HTTP.Token)
	case cfg.HTTP.Username != "":
		httpOpts.Auth = httpauth.NewBasicAuth(cfg.HTTP.Username, cfg.HTTP.Password)
	}

	loaders := make([]loader.Loader, 0, len(args)+len(inline))
	for _, text := range inline {
		l, err := loader.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("--eval: %w", err)
		}
		loaders = append(loaders, l)
	}
	for _, arg := range args {
		l, err := loader.InferLoader(arg, stdin, httpOpts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		loaders = append(loaders, l)
	}
	return loaders, nil
}

// run executes every script on its own executor, sharing one runtime, and renders the
// reports in argument order.
func run(
	ctx context.Context,
	reg *registry.Registry,
	cfg *config.Config,
	loaders []loader.Loader,
	stdout, stderr io.Writer,
) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).WithGroup("bridgerun")

	rtCfg := registry.Config{
		LogHandler: handler,
		MaxDepth:   cfg.MaxDepth,
		WasmFile:   cfg.Extism.WasmFile,
		EntryPoint: cfg.Extism.EntryPoint,
		Command:    cfg.Osascript.Command,
	}
	if len(cfg.Input) > 0 {
		rtCfg.DataProvider = data.NewStaticProvider(cfg.Input)
	}
	rt, err := reg.Open(cfg.Runtime, rtCfg)
	if err != nil {
		return err
	}
	if c, ok := rt.(closer); ok {
		defer func() {
			if err := c.Close(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to close runtime", "error", err)
			}
		}()
	}

	reports := make([]Report, len(loaders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, l := range loaders {
		g.Go(func() error {
			reports[i] = runOne(gctx, rt, l, cfg.Timeout, handler)
			return nil
		})
	}
	_ = g.Wait()

	if err := render(stdout, cfg.Output, reports); err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		if !r.Succeeded() {
			failed++
		}
	}
	if failed > 0 {
		logger.Debug("scripts failed", "failed", failed, "total", len(reports))
		return fmt.Errorf("%w: %d of %d", ErrScriptsFailed, failed, len(reports))
	}
	return nil
}

func runOne(
	ctx context.Context,
	rt platform.Runtime,
	l loader.Loader,
	timeout time.Duration,
	handler slog.Handler,
) Report {
	report := Report{Source: l.GetSourceURL().String()}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	script, err := l.Load(ctx)
	if err != nil {
		report.Failure = err.Error()
		return report
	}

	exec, err := platform.New(rt, platform.WithLogHandler(handler))
	if err != nil {
		report.Failure = err.Error()
		return report
	}
	report.ExecutorID = exec.ID()

	start := time.Now()
	err = exec.Execute(ctx, script)
	report.Duration = time.Since(start)
	report.State = exec.State().String()
	if err != nil {
		report.Failure = err.Error()
		return report
	}

	if v, ok := exec.Result(); ok {
		report.Result = v
	}
	if rec, ok := exec.Errors(); ok {
		report.Error = rec
	}
	return report
}
