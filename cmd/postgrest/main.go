package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-postgrest-client/pkg/client"
	"github.com/robert-malhotra/go-postgrest-client/pkg/config"
)

const (
	urlFlag     = "url"
	timeoutFlag = "timeout"
	configFlag  = "config"
	tokenFlag   = "token"
	headerFlag  = "header"
	verboseFlag = "verbose"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    urlFlag,
			Aliases: []string{"u"},
			Usage:   "PostgREST base URL (overrides the profile)",
			Sources: cli.EnvVars("PGRST_URL"),
		},
		&cli.DurationFlag{
			Name:    timeoutFlag,
			Aliases: []string{"t"},
			Usage:   "HTTP client timeout (e.g. 30s, 1m)",
			Value:   30 * time.Second,
		},
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "YAML profile with connection settings and entity schemas",
		},
		&cli.StringFlag{
			Name:    tokenFlag,
			Usage:   "JWT sent as a bearer token",
			Sources: cli.EnvVars("PGRST_JWT"),
		},
		&cli.StringSliceFlag{
			Name:    headerFlag,
			Aliases: []string{"H"},
			Usage:   "extra request header as name=value (repeatable)",
		},
		&cli.BoolFlag{
			Name:    verboseFlag,
			Aliases: []string{"v"},
			Usage:   "log every request to stderr",
		},
	}
}

// Commands print through these so tests can capture them.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "postgrest",
		Usage: "Query and modify tables exposed by a PostgREST server",
		Flags: globalFlags(),
		// Filter terms such as in.(a,b) carry commas.
		DisableSliceFlagSeparator: true,
		Commands: []*cli.Command{
			newSelectCommand(),
			newInsertCommand(),
			newUpdateCommand(),
			newDeleteCommand(),
			newURLCommand(),
		},
	}
}

// profileFromCommand loads --config, if any, and layers the global flags on top.
func profileFromCommand(cmd *cli.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if path := cmd.String(configFlag); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if u := cmd.String(urlFlag); u != "" {
		cfg.URL = u
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("flag --url is required when the profile has no url")
	}
	if cmd.IsSet(timeoutFlag) || cfg.Timeout == 0 {
		cfg.Timeout = cmd.Duration(timeoutFlag)
	}
	if token := cmd.String(tokenFlag); token != "" {
		cfg.Token = token
	}

	headers, err := parseHeaders(cmd.StringSlice(headerFlag))
	if err != nil {
		return nil, err
	}
	if len(headers) > 0 && cfg.Headers == nil {
		cfg.Headers = make(map[string]string, len(headers))
	}
	for name, value := range headers {
		cfg.Headers[name] = value
	}
	return cfg, nil
}

func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("header %q: expected name=value", v)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

func loggerFromCommand(cmd *cli.Command) *slog.Logger {
	level := slog.LevelWarn
	if cmd.Bool(verboseFlag) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// session bundles what a command needs to talk to the server.
type session struct {
	cfg    *config.Config
	client *client.Client
	models *client.ModelClient
}

func newSession(cmd *cli.Command) (*session, error) {
	cfg, err := profileFromCommand(cmd)
	if err != nil {
		return nil, err
	}
	c, err := cfg.NewClient(client.WithLogger(loggerFromCommand(cmd)))
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	mc, err := client.NewModelClient(c, reg, cfg.ModelOptions()...)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, client: c, models: mc}, nil
}

// declared reports whether the profile carries a schema for entityType.
func (s *session) declared(entityType string) bool {
	_, err := s.models.Registry().Lookup(entityType)
	return err == nil
}
