// Command auth manages the API keys accepted by analyzer-server when
// server.authEnabled is set.
//
// Usage:
//
//	auth [-config path] create -name ci [-ttl 720h]
//	auth [-config path] revoke -key <raw-key>
//	auth [-config path] list
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/auth/apikey"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.SetupWriter(os.Stderr, cfg.Logging.Level, "text")

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to postgres: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := apikey.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare api_keys table: %v\n", err)
		os.Exit(1)
	}

	switch args[0] {
	case "create":
		err = cmdCreate(ctx, store, args[1:], os.Stdout)
	case "revoke":
		err = cmdRevoke(ctx, store, args[1:], os.Stdout)
	case "list":
		err = cmdList(ctx, store, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}
}

func cmdCreate(ctx context.Context, store *apikey.Store, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	name := fs.String("name", "", "name for the key")
	ttl := fs.Duration("ttl", 0, "lifetime, e.g. 720h; 0 never expires")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("-name is required")
	}
	key, err := store.Create(ctx, *name, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "API key created. It is shown only once.")
	fmt.Fprintf(out, "  Key:     %s\n", key)
	fmt.Fprintf(out, "  Name:    %s\n", *name)
	if *ttl > 0 {
		fmt.Fprintf(out, "  Expires: %s\n", time.Now().Add(*ttl).Format(time.RFC3339))
	} else {
		fmt.Fprintln(out, "  Expires: never")
	}
	return nil
}

func cmdRevoke(ctx context.Context, store *apikey.Store, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("revoke", flag.ContinueOnError)
	key := fs.String("key", "", "raw key to revoke")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return fmt.Errorf("-key is required")
	}
	if err := store.Revoke(ctx, *key); err != nil {
		return err
	}
	fmt.Fprintln(out, "API key revoked.")
	return nil
}

func cmdList(ctx context.Context, store *apikey.Store, out io.Writer) error {
	keys, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(out, "No active API keys.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED\tEXPIRES")
	for _, k := range keys {
		expires := "never"
		if k.ExpiresAt != nil {
			expires = k.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", k.ID, k.Name, k.CreatedAt.Format(time.RFC3339), expires)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d active key(s)\n", len(keys))
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: auth [-config path] <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  create   Create a key (-name, -ttl)")
	fmt.Fprintln(os.Stderr, "  revoke   Revoke a key (-key)")
	fmt.Fprintln(os.Stderr, "  list     List active keys")
}
