// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secrets/internal/errors"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:     "app",
		Usage:    "Client-side envelope encryption for object storage",
		Version:  version,
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(exitCode(err))
	}
}

// exitCode maps a returned error to the process exit code (§7/§6): 0 success;
// 2 misconfiguration; 3 key-wrap failure; 4 authentication failure; 5 I/O error.
func exitCode(err error) int {
	switch {
	case errors.Is(err, cryptoDomain.ErrConfiguration):
		return 2
	case errors.Is(err, cryptoDomain.ErrWrapFailure), errors.Is(err, cryptoDomain.ErrUnwrapFailure):
		return 3
	case errors.Is(err, cryptoDomain.ErrAuthenticationFailure), errors.Is(err, cryptoDomain.ErrTamperedEnvelope), errors.Is(err, cryptoDomain.ErrLegacyRefused):
		return 4
	case errors.Is(err, cryptoDomain.ErrIO):
		return 5
	default:
		return 1
	}
}
