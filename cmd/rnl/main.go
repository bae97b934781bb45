package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/auth"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/client"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/config"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/logging"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/mask"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/server"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/store"
)

const usage = `Usage: rnl [-config path] <command> [flags]

Commands:
  serve     run the ingest server
  token     issue an ingest token (-client ID)
  mask      mask JSON documents read from stdin
  send      ship one entry to the ingest server
  version   print the version
`

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: "+config.Defaults.ConfigPath+")")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if cmd == "version" {
		fmt.Printf("rnl %s\n", config.Version())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	state := cfg.Mask.NewMaskState()
	logging.Init(cfg.Logging.LoggerConfig(state))

	switch cmd {
	case "serve":
		err = runServe(cfg, state)
	case "token":
		err = runToken(cfg, args, os.Stdout, os.Stderr)
	case "mask":
		err = runMask(state, os.Stdin, os.Stdout)
	case "send":
		err = runSend(cfg, state, args)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func runServe(cfg *config.AppConfig, state *mask.State) error {
	if err := cfg.Ingest.RequireSecret(); err != nil {
		return err
	}

	driver, err := store.NewDriver(store.Config{
		ConnectionString: cfg.Store.Connection,
		MaxOpenConns:     cfg.Store.MaxOpenConns,
		MaxIdleConns:     cfg.Store.MaxOpenConns,
		ConnMaxLifetime:  time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	ctx := context.Background()
	if err := driver.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer driver.Close()

	entries := store.NewEntryStore(driver, cfg.Store.QueryTimeoutDuration())
	if err := entries.Migrate(ctx); err != nil {
		return err
	}

	policy := state.Policy()
	logging.GetLogger().Log(logging.LevelInfo, "Configuration loaded", map[string]any{
		"store_dialect":  string(driver.Dialect()),
		"level":          cfg.Logging.Level,
		"format":         cfg.Logging.Format,
		"default_mask":   policy.EnableDefaultMask,
		"custom_fields":  len(policy.CustomFields),
		"match_mode":     string(policy.MatchMode),
		"max_batch":      cfg.Ingest.MaxBatch,
		"max_payload_kb": cfg.Ingest.MaxPayloadBytes / 1024,
	})

	tokens := auth.NewTokenService(cfg.Ingest.Secret, cfg.Ingest.TokenExpiryDuration())
	srv := server.New(cfg, entries, tokens, state, config.Version())
	if err := srv.Run(ctx); err != nil {
		return err
	}
	logging.Info("Server stopped gracefully")
	return nil
}

// runToken writes a signed token to out and its lifetime to info.
func runToken(cfg *config.AppConfig, args []string, out, info io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	clientID := fs.String("client", "", "client id embedded in the token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Ingest.RequireSecret(); err != nil {
		return err
	}

	tokens := auth.NewTokenService(cfg.Ingest.Secret, cfg.Ingest.TokenExpiryDuration())
	token, expiresAt, err := tokens.Issue(*clientID)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, token)
	if tokens.Expiry() <= 0 {
		fmt.Fprintln(info, "token does not expire")
		return nil
	}
	fmt.Fprintf(info, "expires at %s (valid for %s)\n", expiresAt.UTC().Format(time.RFC3339), tokens.Expiry())
	return nil
}

// runMask masks a stream of JSON documents, writing one masked document per
// line.
func runMask(redactor logging.Redactor, in io.Reader, out io.Writer) error {
	dec := json.NewDecoder(in)
	dec.UseNumber()
	enc := json.NewEncoder(out)

	for {
		var doc any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("invalid JSON input: %w", err)
		}

		masked, err := redactor.MaskAny(doc)
		if err != nil {
			return err
		}
		if err := enc.Encode(masked); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
}

func runSend(cfg *config.AppConfig, state *mask.State, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	level := fs.String("level", string(logging.LevelInfo), "entry level")
	message := fs.String("message", "", "entry message")
	data := fs.String("data", "", "entry data as a JSON object")
	endpoint := fs.String("endpoint", cfg.Client.Endpoint, "ingest URL")
	token := fs.String("token", cfg.Client.Token, "ingest token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *endpoint == "" {
		return fmt.Errorf("ingest endpoint is required (-endpoint or client.endpoint)")
	}
	lv, err := logging.ParseLevel(*level)
	if err != nil {
		return err
	}
	fields, err := parseData(*data)
	if err != nil {
		return err
	}

	l := client.New(client.Config{
		Level:         logging.LevelDebug,
		ServiceName:   cfg.Logging.ServiceName,
		Env:           cfg.Logging.Env,
		Version:       cfg.Logging.Version,
		Output:        os.Stderr,
		Redactor:      state,
		Transport:     client.NewHTTPTransport(*endpoint, *token),
		BatchSize:     cfg.Client.BatchSize,
		FlushInterval: cfg.Client.FlushInterval,
	})
	l.Log(lv, *message, fields)

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Client.FlushInterval)
	defer cancel()
	return l.Close(ctx)
}

// parseData decodes the -data flag. Numbers keep their literal form.
func parseData(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("-data must be a JSON object: %w", err)
	}
	return fields, nil
}
