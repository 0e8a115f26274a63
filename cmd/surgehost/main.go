package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	logging "gopkg.in/op/go-logging.v1"

	"surgehost/internal/config"
	"surgehost/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "surgehost",
	Short: "Editor-side diagnostics host for the surge toolchain",
	Long:  `surgehost runs the surge analyzer against live source buffers and turns its output into editor-ready diagnostics and quick fixes`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		initLogging(verbose)
	},
}

// main registers subcommands and persistent flags, then executes the root
// command. Command failures exit with status code 1.
func main() {
	rootCmd.Version = version.Number

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to surgehost.toml (default: search upward from the working directory)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initLogging wires the go-logging backend all packages log through.
func initLogging(verbose bool) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	if verbose {
		leveled.SetLevel(logging.DEBUG, "")
	} else {
		leveled.SetLevel(logging.WARNING, "")
	}
	logging.SetBackend(leveled)
}

// loadConfig resolves the manifest from --config or by upward search.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFile(path)
	}
	cfg, _, err := config.Load(".")
	return cfg, err
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
