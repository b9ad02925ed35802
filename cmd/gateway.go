package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/channels/telegram"
	"github.com/nextlevelbuilder/concierge/internal/classify"
	"github.com/nextlevelbuilder/concierge/internal/config"
	"github.com/nextlevelbuilder/concierge/internal/dispatch"
	"github.com/nextlevelbuilder/concierge/internal/gateway"
	"github.com/nextlevelbuilder/concierge/internal/providers"
	"github.com/nextlevelbuilder/concierge/internal/providers/google"
	"github.com/nextlevelbuilder/concierge/internal/respond"
	"github.com/nextlevelbuilder/concierge/internal/store"
	"github.com/nextlevelbuilder/concierge/internal/store/pg"
	"github.com/nextlevelbuilder/concierge/internal/store/sqlite"
	"github.com/nextlevelbuilder/concierge/internal/telemetry"
	"github.com/nextlevelbuilder/concierge/internal/timeparse"
)

// defaultCredentialRef is the token-store key used when a user has no
// per-user credential provisioned.
const defaultCredentialRef = "default"

func runGateway() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Debug("effective config", "config", cfg.MaskedCopy())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownTelemetry(flushCtx)
	}()

	stores, err := openStores(cfg)
	if err != nil {
		slog.Error("storage setup failed", "error", err)
		os.Exit(1)
	}

	resolver := timeparse.NewResolver()
	classifier := classify.New(resolver, cfg.Assistant.Enabled)

	router := buildRouter(ctx, cfg, stores, resolver)
	assembler := respond.NewAssembler(slog.Default())
	transcriber := providers.NewTranscriber(
		cfg.Providers.STT.Endpoint, cfg.Providers.STT.APIKey, cfg.Providers.STT.Model)

	server := gateway.NewServer(cfg, stores, classifier, router, assembler, transcriber)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})

	if cfg.Channels.Telegram.Enabled {
		channel, err := telegram.New(cfg.Channels.Telegram,
			func(ctx context.Context, msg bus.IncomingMessage) bus.OutboundMessage {
				return server.HandleWebhookEvent(ctx, msg)
			})
		if err != nil {
			slog.Error("telegram setup failed", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			if err := channel.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return channel.Stop(stopCtx)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		slog.Error("gateway exited", "error", err)
		os.Exit(1)
	}
	slog.Info("gateway stopped")
}

func openStores(cfg *config.Config) (*store.Stores, error) {
	storeCfg := store.Config{
		Mode:        cfg.Database.Mode,
		PostgresDSN: cfg.Database.PostgresDSN,
		SQLitePath:  config.ExpandHome(cfg.Database.SQLitePath),
	}
	if cfg.UsesPostgres() {
		slog.Info("storage: postgres")
		return pg.NewStores(storeCfg)
	}
	slog.Info("storage: sqlite", "path", storeCfg.SQLitePath)
	return sqlite.NewStores(storeCfg)
}

// buildRouter wires the dispatch router with whatever providers are
// configured. Missing providers leave their handlers in graceful-failure
// mode rather than blocking startup.
func buildRouter(ctx context.Context, cfg *config.Config, stores *store.Stores,
	resolver *timeparse.Resolver) *dispatch.Router {

	var (
		mailer    dispatch.EmailSender
		calendar  dispatch.CalendarService
		extractor dispatch.LeadExtractor
		assistant dispatch.Assistant
	)

	if cfg.Providers.OpenAI.APIKey != "" {
		client := providers.NewOpenAIClient(
			cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.BaseURL, cfg.Providers.OpenAI.Model)
		extractor = providers.NewLeadExtractor(client)
		assistant = providers.NewConversationAgent(client, cfg.Assistant.SystemPrompt)
	} else {
		slog.Warn("no OpenAI API key configured; extraction and conversation degraded")
	}

	if cfg.Google.ClientID != "" && cfg.Google.ClientSecret != "" {
		oauthCfg := google.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
		ts, err := google.TokenSource(ctx, oauthCfg, stores.Tokens, defaultCredentialRef)
		if err != nil {
			slog.Warn("google token unavailable; run 'concierge auth' first", "error", err)
		} else {
			if cal, err := google.NewCalendarClient(ctx, ts); err != nil {
				slog.Warn("calendar client setup failed", "error", err)
			} else {
				calendar = cal
			}
			if gm, err := google.NewGmailClient(ctx, ts); err != nil {
				slog.Warn("gmail client setup failed", "error", err)
			} else {
				mailer = gm
			}
		}
	} else {
		slog.Warn("no Google OAuth client configured; calendar and email disabled")
	}

	return dispatch.NewRouter(resolver, mailer, calendar, extractor, stores.Leads, assistant)
}
