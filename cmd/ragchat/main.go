package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/ragchat"
	"github.com/w-h-a/ragchat/internal/config"
	"github.com/w-h-a/ragchat/internal/shell"
	"github.com/w-h-a/ragchat/internal/tui"
	"github.com/w-h-a/ragchat/server"
	httpserver "github.com/w-h-a/ragchat/server/http"
)

type cli struct {
	config.Config `embed:""`

	Session string `help:"Session identifier used by the interactive front ends" default:"default" env:"RAGCHAT_SESSION"`

	Repl    replCmd    `cmd:"" default:"1" help:"Chat in the terminal, one line per question"`
	Tui     tuiCmd     `cmd:"" help:"Chat in a full screen terminal interface"`
	Serve   serveCmd   `cmd:"" help:"Serve the chat api over http"`
	Refresh refreshCmd `cmd:"" help:"Scrape the source and rebuild the collection"`
	Ask     askCmd     `cmd:"" help:"Answer a single question and exit"`
	Init    initCmd    `cmd:"" help:"Write the current settings to a config file"`
}

type app struct {
	ctx    context.Context
	cli    *cli
	loader *ragchat.Loader
}

type replCmd struct{}

func (c *replCmd) Run(a *app) error {
	return shell.New(a.loader, os.Stdin, os.Stdout, a.cli.Session).Run(a.ctx)
}

type tuiCmd struct{}

func (c *tuiCmd) Run(a *app) error {
	return tui.Run(a.ctx, a.loader, a.cli.Session)
}

type serveCmd struct {
	Address string        `help:"Address to listen on" default:":8080" env:"RAGCHAT_ADDRESS"`
	Grace   time.Duration `help:"Time allowed for in flight requests on shutdown" default:"10s"`
}

func (c *serveCmd) Run(a *app) error {
	srv := httpserver.NewServer(
		httpserver.NewHandler(a.loader),
		server.WithAddress(c.Address),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-a.ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Grace)
	defer cancel()

	return srv.Stop(ctx)
}

type refreshCmd struct {
	Verify string `help:"After refreshing, print the best matching document for this question"`
}

func (c *refreshCmd) Run(a *app) error {
	r, err := a.loader.Get(a.ctx)
	if err != nil {
		return err
	}

	n, err := r.Refresh(a.ctx)
	if err != nil {
		return fmt.Errorf("error retrieving data: %w", err)
	}

	if n == 0 {
		fmt.Println("No countries found; keeping the existing data.")
	} else {
		fmt.Printf("Successfully scraped and stored %d countries!\n", n)
	}

	if len(c.Verify) == 0 {
		return nil
	}

	matches, err := r.Verify(a.ctx, c.Verify, 1)
	if err != nil {
		return err
	}

	for _, m := range matches {
		fmt.Printf("%.4f  %s\n", m.Score, m.Document.Text)
	}

	return nil
}

type askCmd struct {
	Query  []string `arg:"" help:"The question"`
	DryRun bool     `help:"Print the prompt instead of calling the model"`
}

func (c *askCmd) Run(a *app) error {
	r, err := a.loader.Get(a.ctx)
	if err != nil {
		return err
	}

	query := strings.Join(c.Query, " ")

	if c.DryRun {
		prompt, err := r.Prompt(a.ctx, query)
		if err != nil {
			return err
		}
		fmt.Println(prompt)
		return nil
	}

	fmt.Println(r.Answer(a.ctx, query))

	return nil
}

type initCmd struct {
	Path  string `help:"Where to write the file (defaults to the user config path)" type:"path"`
	Force bool   `help:"Overwrite an existing file"`
}

func (c *initCmd) Run(a *app) error {
	path := c.Path
	if len(path) == 0 {
		p, err := config.UserPath()
		if err != nil {
			return err
		}
		path = p
	}

	if config.Exists(path) && !c.Force {
		return fmt.Errorf("%s already exists, pass --force to overwrite", path)
	}

	if err := config.Save(path, a.cli.Config); err != nil {
		return err
	}

	saved, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("read back %s: %w", path, err)
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println(summary(saved))

	return nil
}

func summary(cfg config.Config) string {
	return fmt.Sprintf(
		"store=%s embedder=%s generator=%s collection=%s source=%s",
		cfg.Store.Provider,
		cfg.Embedder.Provider,
		cfg.Generator.Provider,
		cfg.Pipeline.Collection,
		cfg.Pipeline.SourceURL,
	)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	_ = godotenv.Load()

	var c cli
	kctx := kong.Parse(
		&c,
		kong.Name("ragchat"),
		kong.Description("Answer questions about countries from freshly scraped facts."),
		kong.UsageOnError(),
		kong.Configuration(config.YAML, config.Paths()...),
	)

	slog.SetDefault(newLogger(c.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := ragchat.NewLoader(newFactory(c.Config))

	err := kctx.Run(&app{ctx: ctx, cli: &c, loader: loader})

	if cerr := loader.Reset(); cerr != nil {
		slog.WarnContext(ctx, "failed to release pipeline", "error", cerr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
