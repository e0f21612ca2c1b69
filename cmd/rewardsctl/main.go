package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"rewardledger/config"
	"rewardledger/core/epoch"
	"rewardledger/core/state"
	"rewardledger/core/types"
	"rewardledger/crypto"
	"rewardledger/integrations/exports"
	"rewardledger/native/blocklist"
	"rewardledger/native/instruments"
	"rewardledger/native/rewards"
	"rewardledger/services/rewardsd/server"
	"rewardledger/storage"
)

const (
	tokenCommand   = "token"
	eventsCommand  = "events"
	summaryCommand = "summary"
	exportCommand  = "export"
	defaultConfig  = "./rewardsd.toml"
	eventPageSize  = 500
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case tokenCommand:
		err = runToken(os.Args[2:], os.Stdout)
	case eventsCommand:
		err = runEvents(os.Args[2:], os.Stdout)
	case summaryCommand:
		err = runSummary(os.Args[2:], os.Stdout)
	case exportCommand:
		err = runExport(os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: rewardsctl <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  token    mint a bearer token for an address")
	fmt.Fprintln(os.Stderr, "  events   dump the ledger event log as JSON lines")
	fmt.Fprintln(os.Stderr, "  summary  print an epoch or user summary")
	fmt.Fprintln(os.Stderr, "  export   export settled claims as csv or jsonl")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "events, summary and export open the data directory directly; stop rewardsd first.")
}

func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet(tokenCommand, flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the rewardsd config file")
	subject := fs.String("subject", "", "Address the token authenticates (defaults to the admin)")
	ttl := fs.Duration("ttl", time.Hour, "Token lifetime")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	secret, err := cfg.JWTSecret()
	if err != nil {
		return err
	}
	raw := strings.TrimSpace(*subject)
	if raw == "" {
		raw = cfg.Admin
	}
	addr, err := crypto.ParseAddress(raw)
	if err != nil {
		return fmt.Errorf("subject: %w", err)
	}
	token, err := server.IssueToken(secret, cfg.Auth.Issuer, cfg.Auth.Audience, addr, *ttl, time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func runEvents(args []string, out io.Writer) error {
	fs := flag.NewFlagSet(eventsCommand, flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the rewardsd config file")
	from := fs.Uint64("from", 1, "First sequence number to print")
	limit := fs.Int("limit", 0, "Maximum number of events (0 prints all)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg.Service.DataDir)
	if err != nil {
		return err
	}
	defer closeStore()
	return dumpEvents(out, store, *from, *limit)
}

func runSummary(args []string, out io.Writer) error {
	fs := flag.NewFlagSet(summaryCommand, flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the rewardsd config file")
	epochNum := fs.Uint64("epoch", 0, "Epoch to summarise (0 selects the current epoch)")
	user := fs.String("user", "", "Optional participant address")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg.Service.DataDir)
	if err != nil {
		return err
	}
	defer closeStore()
	engine, err := newReadEngine(cfg, store)
	if err != nil {
		return err
	}
	var userAddr *[20]byte
	if raw := strings.TrimSpace(*user); raw != "" {
		addr, err := crypto.ParseAddress(raw)
		if err != nil {
			return fmt.Errorf("user: %w", err)
		}
		userAddr = &addr
	}
	return printSummary(out, engine, *epochNum, userAddr)
}

func runExport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet(exportCommand, flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the rewardsd config file")
	epochNum := fs.Uint64("epoch", 0, "Only export claims against this epoch (0 exports all)")
	format := fs.String("format", "csv", "Output format: csv or jsonl")
	outPath := fs.String("out", "", "Write to this file instead of stdout")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg.Service.DataDir)
	if err != nil {
		return err
	}
	defer closeStore()

	payload, checksum, err := exportClaims(store, *epochNum, *format)
	if err != nil {
		return err
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, payload, 0o644); err != nil {
			return err
		}
	} else if _, err := out.Write(payload); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "sha256 %s\n", checksum)
	return nil
}

func openStore(dataDir string) (*state.Store, func(), error) {
	db, err := storage.NewLevelDB(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open data dir %s: %w", dataDir, err)
	}
	return state.NewStore(db), db.Close, nil
}

func newReadEngine(cfg *config.Config, store *state.Store) (*rewards.Engine, error) {
	params, err := cfg.RewardsParams()
	if err != nil {
		return nil, err
	}
	launchAt, err := cfg.LaunchTime()
	if err != nil {
		return nil, err
	}
	return rewards.NewEngine(store, params, rewards.Deps{
		Clock:     epoch.NewClock(params.Admin),
		Launch:    epoch.StaticLaunch{At: launchAt},
		Gate:      blocklist.NewGate(params.Admin),
		PreLaunch: instruments.NewPreLaunch(params.Admin),
		Primary:   instruments.NewLaunch(),
		Escrow:    instruments.NewEscrow(params.Admin),
	})
}

func readEvents(store *state.Store, from uint64, limit int) ([]*types.Event, error) {
	var out []*types.Event
	err := store.View(func(m *state.Manager) error {
		next := from
		for limit <= 0 || len(out) < limit {
			page, err := m.EventLogRange(next, eventPageSize)
			if err != nil {
				return err
			}
			if len(page) == 0 {
				return nil
			}
			for _, evt := range page {
				if limit > 0 && len(out) >= limit {
					return nil
				}
				out = append(out, evt)
			}
			next = page[len(page)-1].Sequence + 1
		}
		return nil
	})
	return out, err
}

func dumpEvents(out io.Writer, store *state.Store, from uint64, limit int) error {
	evts, err := readEvents(store, from, limit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for _, evt := range evts {
		if err := enc.Encode(evt); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(out io.Writer, engine *rewards.Engine, epochNum uint64, user *[20]byte) error {
	var (
		summary rewards.EpochSummary
		err     error
	)
	if epochNum == 0 {
		summary, err = engine.CurrentEpochSummary()
	} else {
		summary, err = engine.EpochSummary(epochNum)
	}
	if err != nil {
		return err
	}
	result := map[string]any{"epoch": summary}
	if user != nil {
		position, err := engine.UserEpochSummary(*user, summary.Epoch)
		if err != nil {
			return err
		}
		holdings, err := engine.Holdings(*user)
		if err != nil {
			return err
		}
		result["user"] = map[string]any{
			"address":   crypto.Format(*user),
			"balance":   position.Balance,
			"claimed":   position.Claimed,
			"claimable": position.Claimable,
			"holdings":  holdings,
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func exportClaims(store *state.Store, epochNum uint64, format string) ([]byte, string, error) {
	evts, err := readEvents(store, 1, 0)
	if err != nil {
		return nil, "", err
	}
	records, err := exports.ClaimsFromEvents(evts, epochNum)
	if err != nil {
		return nil, "", err
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return exports.ClaimsCSV(records)
	case "jsonl":
		return exports.ClaimsJSONL(records)
	default:
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}
}
