// Command sprunk runs the radio engine: either a single station to one
// output (play) or every station in an index behind an HTTP server
// (serve).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/sprunkfm/sprunk/internal/api"
	"github.com/sprunkfm/sprunk/internal/config"
	"github.com/sprunkfm/sprunk/internal/station"
)

type playCmd struct {
	Radio  string `arg:"" name:"radio" help:"Path to the radio index YAML." type:"existingfile"`
	Mount  string `arg:"" name:"mount" help:"Station mount name within the index."`
	Output string `short:"o" name:"output" help:"Override the station's configured output (system, play, file:PATH)."`
}

func (c *playCmd) Run() error {
	idx, err := station.LoadIndex(c.Radio)
	if err != nil {
		return err
	}
	info, ok := idx.Stations[c.Mount]
	if !ok {
		return fmt.Errorf("unknown mount %q", c.Mount)
	}
	if c.Output != "" {
		info.Output = station.ParseOutput(c.Output)
	}

	appCfg := config.Load()
	sr, err := api.NewStationRunner(c.Mount, info, appCfg.Audio)
	if err != nil {
		return err
	}
	sr.Start()
	waitForSignal()
	sr.Stop()
	return nil
}

type serveCmd struct {
	Radio string `arg:"" name:"radio" help:"Path to the radio index YAML." type:"existingfile"`
	Bind  string `short:"b" name:"bind" help:"Address to bind the HTTP server to (default from config/env)."`
}

func (c *serveCmd) Run() error {
	idx, err := station.LoadIndex(c.Radio)
	if err != nil {
		return err
	}

	appCfg := config.Load()
	bind := appCfg.Server.Bind
	if c.Bind != "" {
		bind = c.Bind
	}

	rl := api.NewIPRateLimiter(api.DefaultRateLimitConfig)
	srv, err := api.NewServer(idx, rl, appCfg.Audio)
	if err != nil {
		return err
	}

	if appCfg.Server.DebugEnabled {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = appCfg.Server.DebugListen
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Warn("debug server disabled", "err", err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(bind) }()

	select {
	case err := <-errCh:
		return err
	case <-signalCh():
		srv.Stop()
		return nil
	}
}

var cli struct {
	Play  playCmd  `cmd:"" help:"Play one station to a single output."`
	Serve serveCmd `cmd:"" help:"Serve every station in an index over HTTP."`
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug("no .env file found, using environment variables only")
	}

	ctx := kong.Parse(&cli,
		kong.Name("sprunk"),
		kong.Description("Internet radio station engine."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func signalCh() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch
}

func waitForSignal() {
	<-signalCh()
}
