// cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aceteam-ai/modulus-cli/internal/config"
	"github.com/aceteam-ai/modulus-cli/internal/logging"
	"github.com/aceteam-ai/modulus-cli/internal/predict"
)

// skipConfig marks commands that run without loading the config file.
const skipConfig = "skip-config"

// errReported is returned after a command has already shown its error.
var errReported = errors.New("error already reported")

var (
	cfgFile   string
	debugMode bool
	logLevel  string
	noColor   bool

	appConfig *config.Config
	log       = logrus.New()
	closeLog  = func() error { return nil }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modulus",
	Short: "Predict the resilient modulus of pavement materials",
	Long: `modulus estimates the resilient modulus (MPa) of base and subgrade layers
from laboratory soil tests using a trained regression model.

Fill the inputs interactively with 'modulus form', pass them as flags with
'modulus predict', or serve predictions over HTTP with 'modulus serve'.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}

		cfg := config.DefaultConfig()
		if cmd.Annotations[skipConfig] == "" {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		appConfig = cfg

		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		closer, err := logging.Setup(log, logging.Options{
			Level:    level,
			Debug:    debugMode,
			DebugDir: filepath.Join(config.Dir(), "logs"),
		})
		if err != nil {
			return err
		}
		closeLog = closer

		if debugMode {
			log.Debugf("command: %s", commandLine(cmd, args))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeDebugLog()
	},
}

// closeDebugLog closes the debug log file once
func closeDebugLog() {
	closeLog()
	closeLog = func() error { return nil }
}

// commandLine reconstructs the invocation for the debug log
func commandLine(cmd *cobra.Command, args []string) string {
	fullCmd := cmd.CommandPath()
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name == "debug" {
			return
		}
		if f.Value.Type() == "bool" {
			fullCmd += " --" + f.Name
		} else {
			fullCmd += " --" + f.Name + "=" + f.Value.String()
		}
	})
	if len(args) > 0 {
		fullCmd += " " + strings.Join(args, " ")
	}
	return fullCmd
}

// newRegistry wires every variant from the loaded config
func newRegistry() *predict.Registry {
	cfg := appConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return predict.NewRegistry(cfg, log)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeDebugLog()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.modulus/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug output (also written to $HOME/.modulus/logs/debug.log)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}
