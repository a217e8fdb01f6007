package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"campusassist-backend/lib/cache"
	"campusassist-backend/lib/configuration"
	"campusassist-backend/lib/fetch"
	"campusassist-backend/lib/scrapers/learnus"
	"campusassist-backend/lib/scrapers/library"
	"campusassist-backend/lib/scrapers/portal"
	"campusassist-backend/lib/serviceutil"
	"campusassist-backend/services/campus"

	"github.com/dgraph-io/badger/v4"
)

type PlatformConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type CacheConfig struct {
	DefaultTtlSeconds    int `json:"default_ttl_seconds"`
	MaxEntries           int `json:"max_entries"`
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
}

type Config struct {
	LearnUs PlatformConfig `json:"learnus"`
	Portal  PlatformConfig `json:"portal"`
	Library PlatformConfig `json:"library"`
	Cache   CacheConfig    `json:"cache"`
	// per-call scrape timeout, 0 falls back to the fetcher default
	TimeoutSeconds int `json:"timeout_seconds"`
	RetryAttempts  int `json:"retry_attempts"`
	// optional badger directory for slow-moving page persistence
	PageCacheDir string `json:"page_cache_dir"`
}

type backend struct {
	service   campus.Service
	learnus   *learnus.Client
	portal    *portal.Client
	library   *library.Client
	results   *cache.Cache[campus.Result]
	pages     *badger.DB
	snapshots *badger.DB
}

func buildBackend(ctx context.Context) *backend {
	cfg, err := configuration.ReadRecursively[Config]("campusd.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	retry := fetch.RetryPolicy{Attempts: cfg.RetryAttempts}

	// pages and result snapshots keep separate badger stores, their
	// value encodings are not compatible
	var pages, snapshots *badger.DB
	if cfg.PageCacheDir != "" {
		pages, err = badger.Open(badger.DefaultOptions(filepath.Join(cfg.PageCacheDir, "pages")))
		if err != nil {
			serviceutil.Fatal("failed to open page cache", err)
		}
		snapshots, err = badger.Open(badger.DefaultOptions(filepath.Join(cfg.PageCacheDir, "results")))
		if err != nil {
			serviceutil.Fatal("failed to open result snapshot store", err)
		}
	}

	learnusClient, err := learnus.NewClient(learnus.ClientOptions{
		BaseUrl:   cfg.LearnUs.BaseUrl,
		Timeout:   timeout,
		Retry:     retry,
		PageCache: pages,
		ClientId:  "learnus",
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize learnus client", err)
	}
	portalClient, err := portal.NewClient(portal.ClientOptions{
		BaseUrl: cfg.Portal.BaseUrl,
		Timeout: timeout,
		Retry:   retry,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize portal client", err)
	}
	libraryClient, err := library.NewClient(library.ClientOptions{
		BaseUrl: cfg.Library.BaseUrl,
		Timeout: timeout,
		Retry:   retry,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize library client", err)
	}

	// a platform that fails login stays unauthenticated and surfaces
	// as a per-platform failure later instead of aborting the process
	login := func(name string, cfg PlatformConfig, do func(ctx context.Context, username, password string) error) {
		if cfg.Username == "" {
			slog.WarnContext(ctx, "no credentials configured, skipping login", "platform", name)
			return
		}
		loginCtx, cancel := context.WithTimeout(ctx, time.Second*30)
		defer cancel()
		if err := do(loginCtx, cfg.Username, cfg.Password); err != nil {
			slog.ErrorContext(ctx, "login failed", "platform", name, "err", err)
		}
	}
	login("learnus", cfg.LearnUs, learnusClient.Login)
	login("portal", cfg.Portal, portalClient.Login)
	login("library", cfg.Library, libraryClient.Login)

	results := cache.New[campus.Result](cache.Options{
		DefaultTTL:    time.Duration(cfg.Cache.DefaultTtlSeconds) * time.Second,
		MaxEntries:    cfg.Cache.MaxEntries,
		SweepInterval: time.Duration(cfg.Cache.SweepIntervalSeconds) * time.Second,
	})
	if snapshots != nil {
		if err := cache.Restore(results, snapshots); err != nil {
			// a stale or corrupt snapshot costs a cold start, nothing more
			slog.WarnContext(ctx, "failed to restore result cache", "err", err)
		}
	}

	service := campus.NewService(campus.ServiceOptions{
		LearnUs: learnusClient,
		Portal:  portalClient,
		Library: libraryClient,
		Results: results,
	})

	return &backend{
		service:   service,
		learnus:   learnusClient,
		portal:    portalClient,
		library:   libraryClient,
		results:   results,
		pages:     pages,
		snapshots: snapshots,
	}
}

func (b *backend) close(ctx context.Context) {
	b.learnus.Logout(ctx)
	b.portal.Logout(ctx)
	b.library.Logout(ctx)
	if b.snapshots != nil {
		if err := cache.Snapshot(b.results, b.snapshots); err != nil {
			slog.ErrorContext(ctx, "failed to snapshot result cache", "err", err)
		}
		if err := b.snapshots.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close result snapshot store", "err", err)
		}
	}
	b.results.Close()
	if b.pages != nil {
		if err := b.pages.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close page cache", "err", err)
		}
	}
}
