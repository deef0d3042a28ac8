// Copyright 2025 Alan Matykiewicz
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to use,
// copy, modify, merge, publish, distribute, sublicense, and/or sell copies of the
// Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES
// OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
// HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY,
// WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"

	"github.com/alan-mat/responseflow/internal/client"
	"github.com/alan-mat/responseflow/internal/config"
	"github.com/alan-mat/responseflow/internal/http"
	"github.com/alan-mat/responseflow/internal/provider"
	"github.com/alan-mat/responseflow/internal/render"
	"github.com/alan-mat/responseflow/server"
)

const (
	ProgramName   = "Flow"
	Version       = "v0.1.0"
	RepositoryUrl = "github.com/alan-mat/responseflow"
)

type serveCmd struct {
	Config string `arg:"--config,-c" help:"path to a YAML config file"`
	Port   int    `arg:"--port,-p" help:"override the configured listen port"`
}

type askCmd struct {
	Server  string `arg:"--server,-s" default:"http://localhost:3000" help:"relay server address"`
	Stream  bool   `arg:"--stream" help:"print the response while it is generated"`
	Retries int    `arg:"--retries" default:"0" help:"re-issue the request this many times when the server is unreachable or answers 429, 502, 503 or 504"`
	Message string `arg:"positional,required" help:"message to send"`
}

type args struct {
	Serve   *serveCmd `arg:"subcommand:serve" help:"start the relay server"`
	Ask     *askCmd   `arg:"subcommand:ask" help:"send a message to a running relay server"`
	Verbose bool      `arg:"--verbose,-v" help:"enable debug logging"`
}

func (args) Version() string {
	return fmt.Sprintf("%s %s", ProgramName, Version)
}

func (args) Epilogue() string {
	return fmt.Sprintf("For more information visit %s", RepositoryUrl)
}

func main() {
	var args args

	p, err := arg.NewParser(arg.Config{Program: strings.ToLower(ProgramName)}, &args)
	if err != nil {
		log.Fatalf("there was an error in the definition of the Go struct: %v", err)
	}
	p.MustParse(os.Args[1:])

	if p.Subcommand() == nil {
		p.WriteUsage(os.Stdout)
		os.Exit(0)
	}

	// logger is reconfigured once the subcommand knows its level
	setupLogger(slog.LevelInfo, args.Verbose)

	loadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd := p.Subcommand().(type) {
	case *serveCmd:
		err = startServer(ctx, cmd, args.Verbose)
	case *askCmd:
		setupLogger(slog.LevelWarn, args.Verbose)
		err = ask(ctx, cmd)
	default:
		p.FailSubcommand("unrecognized command", p.SubcommandNames()...)
	}

	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// loadEnv loads .env, or the given files, into the environment without
// overriding variables that are already set.
func loadEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil {
		slog.Debug("no .env file loaded, relying on environment", "err", err)
	}
}

func setupLogger(level slog.Level, verbose bool) {
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func startServer(ctx context.Context, cmd *serveCmd, verbose bool) error {
	conf, err := config.ReadConfig(cmd.Config)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	conf.ApplyEnv()
	if cmd.Port != 0 {
		conf.Server.ListenPort = cmd.Port
	}

	level, err := conf.SlogLevel()
	if err != nil {
		return err
	}
	setupLogger(level, verbose)

	if conf.Provider.APIKey == "" {
		slog.Warn("no provider api key set", "provider", conf.Provider.Kind)
	}

	prov, err := provider.NewLMProvider(ctx, conf.ProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	slog.Info("using provider", "kind", conf.Provider.Kind, "model", conf.Provider.Model, "base_url", conf.Provider.BaseURL)

	srvConf := server.DefaultConfig()
	srvConf.ListenHost = conf.Server.ListenHost
	srvConf.ListenPort = conf.Server.ListenPort

	srv := server.New(srvConf, prov)
	return srv.Serve(ctx)
}

func ask(ctx context.Context, cmd *askCmd) error {
	c := client.New(cmd.Server,
		http.WithTimeout(0),
		http.WithMaxRetries(cmd.Retries),
	)

	if !cmd.Stream {
		text, err := c.Chat(ctx, cmd.Message)
		if err != nil {
			return err
		}
		fmt.Println(render.Format(text))
		return nil
	}

	text, err := c.ChatStream(ctx, cmd.Message, func(fragment string) {
		fmt.Print(fragment)
	})
	fmt.Println()

	var se client.StreamError
	if errors.As(err, &se) {
		return fmt.Errorf("response incomplete after %d bytes: %w", len(text), err)
	}
	if err != nil {
		return err
	}

	// the streamed text was printed raw, frame it again once it is
	// known to be code
	if render.IsCode(text) {
		fmt.Println(render.Format(text))
	}
	return nil
}
