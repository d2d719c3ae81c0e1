// lifectl is the command-line front end for the lifetrack dashboard. It reads and mutates the
// local stores and keeps them in sync with the lifetrack API when signed in.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, clock.Real()); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer, clk clock.Clock) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg := config.LoadClient()

	var verbose bool
	flags := pflag.NewFlagSet("lifectl", pflag.ContinueOnError)
	flags.SetOutput(errOut)
	flags.SetInterspersed(false)
	flags.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "lifetrack API base URL")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding the local stores")
	flags.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP request timeout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	flags.Usage = func() { printUsage(errOut, flags) }

	if err := flags.Parse(args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) == 0 {
		printUsage(errOut, flags)
		return pflag.ErrHelp
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (see lifectl --help)", rest[0])
	}

	a, err := newApp(cfg, verbose, in, out, errOut, clk)
	if err != nil {
		return err
	}
	defer a.close()
	return cmd.run(ctx, a, rest[1:])
}

func printUsage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: lifectl [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range commandNames() {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, flags.FlagUsages())
}
