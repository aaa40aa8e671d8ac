// DojoTimer is a round timer for structured martial-arts training.
//
// Usage:
//
//	dojotimer run <program-id|file> [flags]
//	dojotimer list | show <program> | import <file>
package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/dojotimer/internal/config"
	"github.com/hammamikhairi/dojotimer/internal/logger"
)

var (
	cfg config.Config
	log *logger.Logger
	// closeLog releases the log file, if any.
	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "dojotimer",
	Short:         "Round timer for structured training",
	Long:          "DojoTimer plays authored training programs as timed rounds with audible cues.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		log, closeLog = setupLogger(cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

// setupLogger directs logs to a rotating file so the terminal UI stays
// clean. "stderr" logs to the console instead.
func setupLogger(cfg config.Config) (*logger.Logger, func()) {
	level := logger.ParseLevel(cfg.LogLevel)

	var out io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		if dir := filepath.Dir(cfg.LogFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not create log dir %s: %v (falling back to stderr)\n", dir, err)
			}
		}
		f := logger.NewRotatingFile(cfg.LogFile)
		out = f
		closeFn = func() { _ = f.Close() }
	}

	// Third-party packages that use the standard logger end up in the
	// same place.
	stdlog.SetOutput(out)
	stdlog.SetFlags(stdlog.Ltime)

	return logger.New(level, out), closeFn
}
