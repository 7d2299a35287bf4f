// Command httphmac signs, sends and verifies HMAC-authenticated HTTP
// requests.
//
// Usage:
//
//	httphmac sign    -url URL -id ID -secret SECRET [flags]
//	httphmac request -url URL -id ID -secret SECRET [flags]
//	httphmac serve
//
// The serve subcommand is configured through HTTPHMAC_* environment
// variables or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

var errUsage = errors.New("usage: httphmac <sign|request|serve> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "httphmac:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "sign":
		return runSign(args[1:], stdout, stderr)
	case "request":
		return runRequest(ctx, args[1:], stdout, stderr)
	case "serve":
		return runServe(ctx, args[1:], stderr)
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}
