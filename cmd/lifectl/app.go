package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"example.com/lifetrack/internal/client"
	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/config"
	"example.com/lifetrack/internal/datasync"
	"example.com/lifetrack/internal/logger"
	"example.com/lifetrack/internal/storage"
	"example.com/lifetrack/internal/tracker"
)

// app bundles what every command needs.
type app struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	clock  clock.Clock
	log    *logger.Logger

	tracker *tracker.Tracker
	client  *client.Client
	sync    *datasync.Coordinator
}

func newApp(cfg config.Client, verbose bool, in io.Reader, out, errOut io.Writer, clk clock.Clock) (*app, error) {
	log := logger.Nop()
	if verbose {
		l, err := logger.New(cfg.LogMode)
		if err != nil {
			return nil, err
		}
		log = l
	}

	sub, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	tr, err := tracker.Open(sub, tracker.WithClock(clk), tracker.WithLogger(log))
	if err != nil {
		return nil, err
	}
	c, err := client.New(cfg.APIURL, sub,
		client.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		client.WithClock(clk),
		client.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	coord := datasync.New(tr, c,
		datasync.WithClock(clk),
		datasync.WithDebounce(cfg.SyncDebounce),
		datasync.WithLogger(log),
	)
	return &app{
		in:      bufio.NewReader(in),
		out:     out,
		errOut:  errOut,
		clock:   clk,
		log:     log,
		tracker: tr,
		client:  c,
		sync:    coord,
	}, nil
}

func (a *app) close() {
	a.sync.Close()
	a.log.Sync()
}

// connect runs the initial pull when a usable session exists.
func (a *app) connect(ctx context.Context) bool {
	session, ok := a.client.Session()
	if !ok {
		return false
	}
	user := client.User{ID: session.UserID, Username: session.Username}
	if err := a.sync.Login(ctx, user); err != nil {
		a.warn("initial pull failed: %v", err)
	}
	return true
}

// mutate applies fn on top of the freshly pulled state and pushes the result. Push failures
// only warn; the local change stands.
func (a *app) mutate(ctx context.Context, fn func() error) error {
	connected := a.connect(ctx)
	if err := fn(); err != nil {
		return err
	}
	if connected {
		if err := a.sync.SyncNow(ctx); err != nil {
			a.warn("sync failed, changes kept locally: %v", err)
		}
	}
	return nil
}

func (a *app) warn(format string, args ...any) {
	fmt.Fprintf(a.errOut, "warning: "+format+"\n", args...)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(a.errOut, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
