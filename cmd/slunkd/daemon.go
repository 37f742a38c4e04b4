// Command slunkd is the harvester daemon: on a configurable schedule it
// polls each enabled application's window, runs that app's parser, and
// hands the result to the ingestion pipeline (C9). The query engine (C10)
// is wired up alongside it, ready for an external RPC/tool endpoint to call.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/beeper/slunk-harvester/internal/config"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/embedding"
	"github.com/beeper/slunk-harvester/internal/hashstore"
	"github.com/beeper/slunk-harvester/internal/ingest"
	"github.com/beeper/slunk-harvester/internal/parsers"
	"github.com/beeper/slunk-harvester/internal/query"
	"github.com/beeper/slunk-harvester/internal/store"
)

// windowDeadline bounds a single window's traversal.
const windowDeadline = 30 * time.Second

// WindowSource is the out-of-scope window enumerator: the platform-specific
// collaborator that knows which application windows are open right now and
// can hand back their accessibility root for one named application. The
// daemon depends only on this interface, the same boundary internal/a11y
// draws around OSBinding, so this module never imports a concrete
// per-OS implementation.
type WindowSource interface {
	Windows(ctx context.Context, app string) ([]parsers.Window, error)
}

// newWindowSource is filled in by a platform-specific build, external to
// this module (see internal/a11y.OSBinding for the same boundary drawn one
// layer down). Until one is wired, the daemon refuses to start rather than
// silently harvesting nothing.
var newWindowSource = func() (WindowSource, error) {
	return nil, errors.New("no WindowSource wired: supply a platform-specific implementation")
}

// appParser pairs one registered application name with its Parser and the
// config toggle that enables it.
type appParser struct {
	name    string
	parser  parsers.Parser
	enabled func(*config.ParsersConfig) bool
}

var registeredParsers = []appParser{
	{"slack", parsers.SlackParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Slack) }},
	{"whatsapp", parsers.WhatsAppParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.WhatsApp) }},
	{"messenger", parsers.MessengerParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Messenger) }},
	{"messages", parsers.MessagesParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Messages) }},
	{"mail", parsers.MailParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Mail) }},
	{"discord", parsers.DiscordParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Discord) }},
	{"teams", parsers.TeamsParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Teams) }},
	{"outlook", parsers.OutlookParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Outlook) }},
	{"notion", parsers.NotionParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Notion) }},
	{"obsidian", parsers.ObsidianParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Obsidian) }},
	{"calendar", parsers.CalendarParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Calendar) }},
	{"chrome", parsers.ChromeParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Chrome) }},
	{"zoom", parsers.ZoomParser{}, func(p *config.ParsersConfig) bool { return config.Enabled(p.Zoom) }},
}

// Daemon wires C9 ingestion and C10 query over one Store, driven on a cron
// schedule that re-polls every enabled application's window.
type Daemon struct {
	cfg     *config.Config
	log     *zerolog.Logger
	store   *store.Store
	hashes  *hashstore.Store
	windows WindowSource
	ingest  *ingest.Pipeline

	// Query is the C10 search surface, ready for the (out-of-scope)
	// outward-facing RPC/tool endpoint to call.
	Query *query.Engine
}

func newDaemon(ctx context.Context, cfg *config.Config, windows WindowSource, log *zerolog.Logger) (*Daemon, error) {
	dbPath := expandPath(cfg.Store.Path)
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	st, err := store.Open(ctx, dbPath, cfg.Store.Vector.ExtensionPath, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	hashDir := expandPath(cfg.HashStore.Dir)
	if hashDir == "" {
		hashDir = os.TempDir()
	}
	hs, err := hashstore.Open(hashDir, time.Now())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open hash store: %w", err)
	}

	var embed embedding.Provider
	if strings.TrimSpace(cfg.Embedding.APIKey) != "" {
		p, perr := embedding.NewOpenAIProvider(cfg.Embedding.APIKey, cfg.Embedding.BaseURL, cfg.Embedding.Model)
		if perr != nil {
			log.Warn().Err(perr).Msg("embedding provider unavailable, continuing without vector search")
		} else {
			embed = p
		}
	} else {
		log.Warn().Msg("no embedding api_key configured, vector and hybrid search disabled")
	}

	pipeline := ingest.New(st, embed, log).WithHashStore(hs)
	engine := query.NewEngine(st, embed, query.HybridConfig{
		VectorWeight:    cfg.Query.Hybrid.VectorWeight,
		TextWeight:      cfg.Query.Hybrid.TextWeight,
		VectorOverfetch: cfg.Query.Hybrid.VectorOverfetch,
	})

	return &Daemon{
		cfg:     cfg,
		log:     log,
		store:   st,
		hashes:  hs,
		windows: windows,
		ingest:  pipeline,
		Query:   engine,
	}, nil
}

func (d *Daemon) Close() error {
	return d.store.Close()
}

// Run blocks, harvesting once immediately and then again every time the
// configured cron schedule fires, until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	expr := strings.TrimSpace(d.cfg.Schedule.Cron)
	if expr == "" {
		expr = "*/5 * * * *"
	}
	parser := cronlib.NewParser(cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor)
	sched, err := parser.Parse(expr)
	if err != nil {
		return fmt.Errorf("parse schedule.cron %q: %w", expr, err)
	}

	d.harvestAll(ctx)
	for {
		wait := time.Until(sched.Next(time.Now()))
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			d.harvestAll(ctx)
		}
	}
}

// harvestAll polls every enabled application once, applications in parallel,
// each application's windows processed one at a time (one actor per
// application, feeding the single-writer ingestion pipeline).
func (d *Daemon) harvestAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, ap := range registeredParsers {
		if !ap.enabled(&d.cfg.Parsers) {
			continue
		}
		ap := ap
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.harvestApp(ctx, ap)
		}()
	}
	wg.Wait()
}

func (d *Daemon) harvestApp(ctx context.Context, ap appParser) {
	windows, err := d.windows.Windows(ctx, ap.name)
	if err != nil {
		d.log.Warn().Err(err).Str("app", ap.name).Msg("window enumeration failed")
		return
	}
	for _, w := range windows {
		d.harvestWindow(ctx, ap, w)
	}
}

func (d *Daemon) harvestWindow(ctx context.Context, ap appParser, w parsers.Window) {
	dl := deadline.FromNow(windowDeadline)
	result, err := ap.parser.Parse(ctx, w, dl)
	if err != nil {
		d.log.Warn().Err(err).Str("app", ap.name).Str("window", w.Title).Msg("parse failed")
		return
	}
	if result.Empty() {
		return
	}

	for _, rec := range result.ActiveConversations {
		if rec.App == "" {
			rec.App = ap.name
		}
		session, err := d.ingest.IngestConversation(ctx, rec)
		if err != nil {
			d.log.Warn().Err(err).Str("app", ap.name).Str("channel", rec.Channel).Msg("ingestion failed")
			continue
		}
		d.log.Info().
			Str("app", ap.name).
			Str("channel", rec.Channel).
			Int("new", session.NewCount).
			Int("updated", session.UpdatedCount).
			Int("duplicate", session.DuplicateCount).
			Int("reactions_updated", session.ReactionUpdated).
			Msg("conversation ingested")
	}

	// CalendarEvents, Document, BrowserFrame and Meeting have no relational
	// table of their own (only messages do); surface them as structured log
	// events rather than inventing storage for them.
	for _, ev := range result.CalendarEvents {
		d.log.Info().Str("app", ap.name).Str("title", ev.Title).Time("start", ev.Start).Msg("calendar event observed")
	}
	if result.Document != nil {
		d.log.Info().Str("app", ap.name).Str("title", result.Document.Title).Int("content_len", len(result.Document.Content)).Msg("document observed")
	}
	if result.BrowserFrame != nil {
		d.log.Info().Str("app", ap.name).Str("url", result.BrowserFrame.URL).Msg("browser frame observed")
	}
	if result.Meeting != nil {
		d.log.Info().Str("app", ap.name).Str("meeting_id", result.Meeting.MeetingID).Int("participants", len(result.Meeting.Participants)).Msg("meeting observed")
	}
	if len(result.ConversationSummaries) > 0 {
		d.log.Debug().Str("app", ap.name).Int("count", len(result.ConversationSummaries)).Msg("conversation summaries observed")
	}
}
