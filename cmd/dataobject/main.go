package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/samber/do"

	"github.com/broady/dataobject"
	"github.com/broady/dataobject/internal/config"
)

type CLI struct {
	Config string `help:"Path to the environment config." default:"etc/env.yaml" type:"path" short:"c"`
	Docs   string `help:"Load documentation from Go source packages matching this pattern." placeholder:"PATTERN"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Schema  SchemaCmd  `cmd:"" help:"Print the complex type registry as JSON."`
	Check   CheckCmd   `cmd:"" help:"Validate the declared contracts of every data object."`
	Serve   ServeCmd   `cmd:"" help:"Serve the sales API."`
}

// setup loads the configuration and wires the injector.
func (c *CLI) setup(stderr io.Writer) (*do.Injector, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	logger := cfg.Log.NewLogger(stderr)
	return newInjector(cfg, logger, sourceDocs(c.Docs)), nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	_, err := fmt.Fprintln(out, Version())
	return err
}

type SchemaCmd struct {
	Type string `arg:"" optional:"" help:"Print a single registry entry, e.g. SalesDataOrder."`
}

func (c *SchemaCmd) Run(cli *CLI, out io.Writer) error {
	i, err := cli.setup(os.Stderr)
	if err != nil {
		return err
	}
	defer i.Shutdown()
	s, err := do.Invoke[*dataobject.Serializer](i)
	if err != nil {
		return err
	}

	var result any = s.Types()
	if c.Type != "" {
		ct, ok := s.Type(c.Type)
		if !ok {
			return fmt.Errorf("type %q is not registered", c.Type)
		}
		result = ct
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

type CheckCmd struct{}

func (c *CheckCmd) Run(cli *CLI, out io.Writer) error {
	i, err := cli.setup(os.Stderr)
	if err != nil {
		return err
	}
	defer i.Shutdown()
	app, err := do.Invoke[*dataobject.App](i)
	if err != nil {
		return err
	}
	s := do.MustInvoke[*dataobject.Serializer](i)

	for _, ct := range s.Types() {
		fmt.Fprintf(out, "type %s (%d fields)\n", ct.Name, len(ct.Parameters))
	}
	for _, r := range app.Routes() {
		result := r.ResultType
		if result == "" {
			result = "-"
		}
		fmt.Fprintf(out, "route %-4s %-16s %s\n", r.HTTPMethod, r.Path, result)
	}
	_, err = fmt.Fprintln(out, "ok")
	return err
}

type ServeCmd struct {
	Addr            string        `help:"Listen address. Overrides server.addr."`
	ShutdownTimeout time.Duration `help:"How long to wait for in-flight requests on shutdown." default:"10s"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	i, err := cli.setup(os.Stderr)
	if err != nil {
		return err
	}
	defer i.Shutdown()
	app, err := do.Invoke[*dataobject.App](i)
	if err != nil {
		return err
	}
	cfg := do.MustInvoke[*config.Config](i)
	logger := do.MustInvoke[*slog.Logger](i)

	addr := cfg.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", addr), slog.String("front_url", cfg.Front.URL))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("dataobject"),
		kong.Description("Serve and inspect data object APIs."),
		kong.UsageOnError(),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)
	err := ctx.Run(cli)
	ctx.FatalIfErrorf(err)
}
