// Command tinymist-lsp is the process entrypoint for the session
// kernel: it parses flags, wires a Stream/Conn around stdio, and runs
// the reactor until the client disconnects or sends exit.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
	"github.com/sjfhsjfh/tinymist/internal/logging"
	"github.com/sjfhsjfh/tinymist/internal/session"
)

// version is overwritten at build time via -ldflags.
var version = "0.1.0-dev"

func main() {
	root := rootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		stdio         bool
		mode          string
		logLevel      string
		commandPrefix string
		packageRoot   string
	)

	cmd := &cobra.Command{
		Use:     "tinymist-lsp",
		Short:   "tinymist-lsp: a document-language server core",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdio {
				return fmt.Errorf("only --stdio transport is supported, got --mode=%s without --stdio", mode)
			}
			return runStdio(cmd.Context(), logLevel, commandPrefix, packageRoot)
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", true, "serve over stdin/stdout (the only supported transport)")
	cmd.Flags().StringVar(&mode, "mode", "stdio", "transport mode; only \"stdio\" is implemented")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	cmd.Flags().StringVar(&commandPrefix, "command-prefix", "tinymist", "prefix applied to workspace/executeCommand names")
	cmd.Flags().StringVar(&packageRoot, "package-root", "", "directory the local package source resolves packages under")

	return cmd
}

func runStdio(ctx context.Context, logLevel, commandPrefix, packageRoot string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	log := logging.New(level)
	entry := log.WithField("component", "tinymist-lsp")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream := jsonrpc2.NewStream(jsonrpc2.StdioReadWriter{Reader: os.Stdin, Writer: os.Stdout})
	conn := jsonrpc2.NewConn(stream)

	s := session.New(conn, entry, session.Options{
		CommandPrefix: commandPrefix,
		PackageRoot:   packageRoot,
	})
	defer s.Close()

	entry.Info("starting session reactor")
	if err := s.Run(ctx); err != nil {
		entry.WithError(err).Error("session reactor exited with error")
		return err
	}
	entry.Info("session reactor stopped")
	return nil
}
