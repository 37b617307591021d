package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	base       string
	timeout    string
	logLevel   string
	insecure   bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "impaktor",
		Short: "Typed calls against a JSON REST API",
		Long: `
  _                       _    _
 (_)_ __ ___  _ __   __ _| | _| |_ ___  _ __
 | | '_ ` + "`" + ` _ \| '_ \ / _` + "`" + ` | |/ / __/ _ \| '__|
 | | | | | | | |_) | (_| |   <| || (_) | |
 |_|_| |_| |_| .__/ \__,_|_|\_\\__\___/|_|
             |_|

impaktor sends JSON requests over HTTPS and reports every call as a
success, a failure decoded from the server's error body, or a transport
error (timeout, network, serialization).

Get started:
  impaktor call GET users --base api.example.com
  impaktor login --identifier you@example.com
  impaktor probe health --count 20 --rate 5`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML or TOML configuration file")
	flags.StringVarP(&opts.base, "base", "b", "", "Base address, host[:port][/prefix] without a scheme")
	flags.StringVar(&opts.timeout, "timeout", "", "Call timeout, e.g. 500ms, 10s, 2m (0 disables)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")

	rootCmd.AddCommand(
		newCallCmd(opts),
		newLoginCmd(opts),
		newProbeCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetVersion sets the version info
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// SetGitCommit sets the commit the binary was built from
func SetGitCommit(c string) {
	gitCommit = c
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, gitCommit, buildTime)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "impaktor %s\n", versionString())
		},
	}
}
