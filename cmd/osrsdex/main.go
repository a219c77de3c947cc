// ABOUTME: CLI entry point for osrsdex, the Old School RuneScape reference server
// ABOUTME: Parses flags, loads config, wires data backends, dispatches subcommands

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/gielinor/osrsdex/internal/bestiary"
	"github.com/gielinor/osrsdex/internal/config"
	"github.com/gielinor/osrsdex/internal/datafile"
	"github.com/gielinor/osrsdex/internal/hiscores"
	dexhttp "github.com/gielinor/osrsdex/internal/http"
	dexlog "github.com/gielinor/osrsdex/internal/log"
	"github.com/gielinor/osrsdex/internal/markup"
	"github.com/gielinor/osrsdex/internal/mcp"
	"github.com/gielinor/osrsdex/internal/prices"
	"github.com/gielinor/osrsdex/internal/tools"
	"github.com/gielinor/osrsdex/internal/tui"
	"github.com/gielinor/osrsdex/internal/wiki"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// A missing .env is fine; it only supplies optional overrides.
	_ = godotenv.Load()

	args := parseFlags()

	if args.version {
		printVersion()
		os.Exit(0)
	}

	cmd := "serve"
	rest := args.remaining()
	if len(rest) > 0 {
		cmd = rest[0]
		rest = rest[1:]
	}

	if err := run(cmd, rest, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("osrsdex %s (%s) built %s\n", version, commit, date)
}

func run(cmd string, rest []string, args cliArgs) error {
	if args.verbose {
		dexlog.SetLevel(dexlog.LevelDebug)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if args.dataDir != "" {
		cfg.DataDir = args.dataDir
	}

	switch cmd {
	case "serve":
		return runServe(cfg)
	case "browse":
		return runBrowse(cfg)
	case "wiki":
		if len(rest) == 0 {
			return fmt.Errorf("usage: osrsdex wiki <page title>")
		}
		return runWiki(cfg, strings.Join(rest, " "), args.width)
	case "refresh":
		if len(rest) == 0 {
			return fmt.Errorf("usage: osrsdex refresh <sounds|monsters>")
		}
		return runRefresh(cfg, rest[0])
	case "version":
		printVersion()
		return nil
	default:
		return fmt.Errorf("unknown command %q (expected serve, browse, wiki, refresh, or version)", cmd)
	}
}

// backends bundles every data source the subcommands draw from. One shared
// HTTP client serves all upstream traffic.
type backends struct {
	store     *datafile.Store
	refresher *datafile.Refresher
	bestiary  *bestiary.Manager
	wiki      *wiki.Client
	prices    *prices.Client
	hiscores  *hiscores.Client
}

func buildBackends(cfg *config.Settings) (*backends, error) {
	dataDir := cfg.Data()
	if err := config.EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	man, err := datafile.LoadManifest(dataDir)
	if err != nil {
		return nil, fmt.Errorf("loading dataset manifest: %w", err)
	}

	client := dexhttp.NewClient(cfg.Timeout())
	store := datafile.NewStore(dataDir, man, cfg.FileTTL())
	ttl := cfg.ResponseTTL()
	maxEntries := cfg.MaxEntries()
	agent := cfg.Agent()

	return &backends{
		store:     store,
		refresher: &datafile.Refresher{Store: store, Client: client, Agent: agent},
		bestiary:  bestiary.New(dataDir, cfg.Monsters(), cfg.SnapshotAge(), client, agent),
		wiki:      wiki.New(cfg.WikiAPI(), agent, client, ttl, maxEntries, cfg.EvictionPolicy),
		prices:    prices.New(cfg.PricesAPI(), agent, client, ttl, maxEntries, cfg.EvictionPolicy),
		hiscores:  hiscores.New(cfg.Hiscores(), agent, client, ttl, maxEntries, cfg.EvictionPolicy),
	}, nil
}

func runServe(cfg *config.Settings) error {
	b, err := buildBackends(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eagerRefresh(ctx, cfg, b)

	reg, err := tools.New(&tools.Deps{
		Store:     b.store,
		Refresher: b.refresher,
		Bestiary:  b.bestiary,
		Wiki:      b.wiki,
		Prices:    b.prices,
		Hiscores:  b.hiscores,
	})
	if err != nil {
		return fmt.Errorf("building tool registry: %w", err)
	}

	dexlog.Info("serving %d tools over stdio", len(reg.All()))
	return mcp.NewServer(reg, version).Serve(ctx)
}

// eagerRefresh regenerates the opted-in datasets before serving. Failures
// are logged and serving continues with whatever data already exists.
func eagerRefresh(ctx context.Context, cfg *config.Settings, b *backends) {
	if !cfg.RefreshSounds && !cfg.RefreshMonsters {
		return
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.RefreshSounds {
		g.Go(func() error {
			n, err := b.refresher.Refresh(gCtx, "sounds")
			if err != nil {
				dexlog.Warn("startup sounds refresh: %v", err)
				return nil
			}
			dexlog.Info("refreshed sounds table: %d records", n)
			return nil
		})
	}

	if cfg.RefreshMonsters {
		g.Go(func() error {
			snap, err := b.bestiary.Snapshot(gCtx, true)
			if err != nil {
				dexlog.Warn("startup monster refresh: %v", err)
				return nil
			}
			if snap != nil {
				dexlog.Info("refreshed monster snapshot: %d monsters", snap.Count())
			}
			return nil
		})
	}

	_ = g.Wait()
}

func runBrowse(cfg *config.Settings) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("browse needs a terminal; use serve for the stdio transport")
	}

	b, err := buildBackends(cfg)
	if err != nil {
		return err
	}

	snap, err := b.bestiary.Snapshot(context.Background(), false)
	if err != nil {
		return fmt.Errorf("loading monster snapshot: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("no monster data available; check network access and retry")
	}

	return tui.Run(snap)
}

func runWiki(cfg *config.Settings, title string, width int) error {
	b, err := buildBackends(cfg)
	if err != nil {
		return err
	}

	page, err := b.wiki.PageHTML(context.Background(), title)
	if err != nil {
		return fmt.Errorf("fetching %q: %w", title, err)
	}

	if width <= 0 {
		width = 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	md := "# " + page.Title + "\n\n" + markup.CleanContent(page.HTML)
	fmt.Println(tui.RenderMarkdown(md, width))
	return nil
}

func runRefresh(cfg *config.Settings, target string) error {
	b, err := buildBackends(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()

	switch target {
	case "sounds":
		n, err := b.refresher.Refresh(ctx, "sounds")
		if err != nil {
			return fmt.Errorf("refreshing sounds: %w", err)
		}
		fmt.Printf("regenerated sounds table: %d records\n", n)
		return nil
	case "monsters":
		snap, err := b.bestiary.Snapshot(ctx, true)
		if err != nil {
			return fmt.Errorf("refreshing monsters: %w", err)
		}
		if snap == nil {
			return fmt.Errorf("monster snapshot fetch failed; existing data kept")
		}
		fmt.Printf("refreshed monster snapshot: %d monsters\n", snap.Count())
		return nil
	default:
		return fmt.Errorf("unknown refresh target %q (expected sounds or monsters)", target)
	}
}
