package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/juju/loggo/v2"
	"github.com/spf13/cobra"

	"optitech/internal/app/common"
	"optitech/internal/infra/config"
	"optitech/internal/infra/execx"
	"optitech/internal/infra/logging"
	"optitech/internal/infra/servicectl"
)

var logger = loggo.GetLogger("optitech.cmd")

var (
	opts           common.GlobalOptions
	profilePath    string
	commandTimeout time.Duration
	// closers are released in reverse order when the command returns.
	closers []io.Closer
)

var rootCmd = &cobra.Command{
	Use:          "optitech",
	Short:        "OptiTech tunes Windows service startup types and can roll the changes back",
	Long:         "OptiTech inspects Windows services, applies an optimization profile to their startup types, records every change for rollback, and reports on system health.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !interactiveTerminal() {
			return cmd.Help()
		}
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		return runInteractiveMenu(cmd.Context(), app)
	},
}

func Execute() error {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		appCtx, err := buildAppContext(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(ctx, common.ContextKeyApp, appCtx))
		return nil
	}
	defer closeResources()

	return rootCmd.Execute()
}

func closeResources() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warningf("closing: %v", err)
		}
	}
	closers = nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "Query services but never change them")
	rootCmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.Yes, "yes", false, "Auto-confirm actions in non-interactive mode")
	rootCmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&opts.NoOpLog, "no-oplog", false, "Disable operation log")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "Optimization profile (JSON or YAML); built-in profile when empty")
	rootCmd.PersistentFlags().DurationVar(&commandTimeout, "timeout", execx.DefaultTimeout, "Timeout for each sc.exe invocation")

	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func printResult(v any) error {
	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	if line, ok := v.(fmt.Stringer); ok {
		fmt.Println(line.String())
		return nil
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func buildAppContext(cmd *cobra.Command) (*common.AppContext, error) {
	// .env may relocate the data directory, so it is read before resolving.
	config.LoadEnvFile(".env")
	paths, err := config.ResolvePaths()
	if err != nil {
		return nil, err
	}
	config.LoadEnvFile(paths.EnvFile())
	settings := config.LoadSettings()

	if err := paths.Ensure(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	logFile := paths.AppLog()
	if _, err := os.Stat(paths.Logs()); err != nil {
		logFile = ""
	}
	closer, err := logging.SetupDiagnostics(logging.DiagOptions{
		LogFile: logFile,
		Level:   settings.LogLevel,
		Debug:   opts.Debug,
		Stderr:  os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	closers = append(closers, closer)

	oplogDisabled := opts.NoOpLog || settings.NoOpLog
	oplog, err := logging.NewOperationLogger(paths.OperationLog(), oplogDisabled)
	if err != nil {
		logger.Warningf("operation log disabled: %v", err)
		oplog = logging.NewNoopLogger()
	}
	if c, ok := oplog.(io.Closer); ok {
		closers = append(closers, c)
	}

	timeout := settings.CommandTimeout
	if flagChanged(cmd, "timeout") {
		timeout = commandTimeout
	}
	profileFile := settings.ProfilePath
	if strings.TrimSpace(profilePath) != "" {
		profileFile = profilePath
	}
	logger.Debugf("data dir %s, profile %q, timeout %s", paths.Root, profileFile, timeout)

	return &common.AppContext{
		Options:  opts,
		Paths:    paths,
		Profile:  config.ActiveProfile(profileFile),
		Logger:   oplog,
		Services: servicectl.New(execx.NewRunner(timeout)),
	}, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func interactiveTerminal() bool {
	in, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	out, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	term := os.Getenv("TERM")
	if runtime.GOOS == "windows" && term == "" {
		// the Windows console does not set TERM
		term = "windows-console"
	}
	return shouldUseInteractive(in.Mode(), out.Mode(), term)
}

func shouldUseInteractive(stdin, stdout os.FileMode, term string) bool {
	return isCharDevice(stdin) && isCharDevice(stdout) && !isDumbTerm(term)
}

func isCharDevice(mode os.FileMode) bool {
	return mode&os.ModeCharDevice != 0
}

func isDumbTerm(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	return term == "" || term == "dumb"
}
