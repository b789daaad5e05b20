package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/FrenchMajesty/remote-shell/shell"
	sshbackend "github.com/FrenchMajesty/remote-shell/shell/backends/ssh"
	"github.com/FrenchMajesty/remote-shell/utils/logger"
)

// Command-line front end for the ssh backend: run a command on a host and
// print what it wrote, exactly as shell.Output would hand it to a caller.
//
// Example:
//
//	remote-shell --user root --password root 192.168.1.76 -- ls -1 /

var (
	flagUser     string
	flagPassword string
	flagKeyFile  string
	flagPort     int
	flagConfig   string
	flagTimeout  time.Duration
	flagVerbose  bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "remote-shell [flags] <host> -- <command> [args...]",
		Short:         "Run a command on a remote host over SSH",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.Flags().StringVarP(&flagUser, "user", "u", "", "login user (default: current user)")
	cmd.Flags().StringVarP(&flagPassword, "password", "p", "", "password for authentication")
	cmd.Flags().StringVarP(&flagKeyFile, "key", "k", "", "private key file for authentication")
	cmd.Flags().IntVar(&flagPort, "port", 0, "SSH port (default 22)")
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "YAML host inventory to resolve the host against")
	cmd.Flags().DurationVarP(&flagTimeout, "timeout", "t", 0, "time budget for the command (default 1h)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	host, argv := args[0], args[1:]

	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.NewStdoutLogger(level)

	opts := []sshbackend.Option{sshbackend.WithLogger(log)}
	if flagUser != "" {
		opts = append(opts, sshbackend.WithUser(flagUser))
	}
	if flagPassword != "" {
		opts = append(opts, sshbackend.WithPassword(flagPassword))
	}
	if flagKeyFile != "" {
		opts = append(opts, sshbackend.WithKeyFile(flagKeyFile))
	}
	if flagPort != 0 {
		opts = append(opts, sshbackend.WithPort(flagPort))
	}

	var client *sshbackend.Client
	if flagConfig != "" {
		cfg, err := sshbackend.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		client = cfg.Host(host).NewClient(opts...)
	} else {
		client = sshbackend.NewClient(host, opts...)
	}
	defer sshbackend.CloseAllConnections()

	out, err := shell.Output(cmd.Context(), client, argv, &shell.Options{
		Timeout: flagTimeout,
		Logger:  log,
	})
	if err != nil {
		// Show what the command managed to write before failing.
		var exitErr *shell.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Output) > 0 {
			fmt.Print(string(exitErr.Output))
		}
		return err
	}
	fmt.Print(string(out))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
