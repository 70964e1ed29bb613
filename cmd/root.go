package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/env"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/metrics"
	"github.com/josephlewis42/minish/core/shell"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgPath     string
	debug       bool
	commandLine string

	exitStatus int
)

func loadConfig() (*config.Configuration, error) {
	if cfgPath == "" {
		cfgPath = config.DefaultDir()
	}
	return config.Load(cfgPath)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minish",
	Short: "A minimal interactive shell",
	Long: `A minimal shell that runs one command per line with at most one
pipe or redirection and kills jobs that run past a timeout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		exitStatus, err = runShell(ctx, cmd, configuration)
		return err
	},
}

// stdinIsTerminal reports whether fd 0 is a terminal.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// shellOptions builds the shell's options. Whenever stdin is a terminal it's
// handed to the shell for job control, even for a single -c line.
func shellOptions(cmd *cobra.Command, configuration *config.Configuration, recorder *logger.Recorder, stats *metrics.Metrics) shell.Options {
	opts := shell.Options{
		Env:      env.OSEnv{},
		Stdin:    os.Stdin,
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
		Timeout:  configuration.ParsedTimeout(),
		MaxArgs:  configuration.MaxArgs,
		Prompt:   configuration.Prompt,
		Colors:   shell.NewColorPrinter(configuration.ResolveColor(term.IsTerminal(int(os.Stderr.Fd())))),
		Logger:   newLogger(cmd.ErrOrStderr()),
		Recorder: recorder,
		Metrics:  stats,
	}
	if stdinIsTerminal() {
		opts.TTY = os.Stdin
	}
	return opts
}

func runShell(ctx context.Context, cmd *cobra.Command, configuration *config.Configuration) (int, error) {
	auditLog, err := configuration.OpenAuditLog()
	if err != nil {
		return 1, err
	}
	if auditLog != nil {
		defer auditLog.Close()
	}
	recorder := logger.NewJSONLinesRecorder(auditLog)

	stats := metrics.New()
	opts := shellOptions(cmd, configuration, recorder, stats)

	// The line editor is only used when lines come from the terminal.
	interactive := commandLine == "" && opts.TTY != nil
	if interactive {
		input, err := shell.NewTerminalReader(configuration.HistoryFile)
		if err != nil {
			return 1, err
		}
		opts.Input = input
	}

	sh := shell.New(opts)
	defer sh.Close()

	log := opts.Logger
	log.Debug("starting shell",
		"session_id", recorder.SessionID(),
		"interactive", interactive,
		"job_control", opts.TTY != nil,
		"timeout", opts.Timeout)

	var status int
	if commandLine != "" {
		status = sh.RunLine(ctx, commandLine)
	} else {
		status = sh.Run(ctx)
	}

	if path := configuration.MetricsTextfile; path != "" {
		if err := stats.WriteTextfile(path); err != nil {
			log.Warn("couldn't write metrics", "path", path, "error", err)
		}
	}

	return status, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// It returns the process exit status.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitStatus
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config directory (default $XDG_CONFIG_HOME/minish)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a single line and exit with its status")
}
