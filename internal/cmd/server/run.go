package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/beaconhq/beacon/internal/config"
	producerpkg "github.com/beaconhq/beacon/internal/producer"
	"github.com/beaconhq/beacon/internal/runtime"
	httpserver "github.com/beaconhq/beacon/internal/server/http"
	pebblestore "github.com/beaconhq/beacon/internal/storage/pebble"
	logpkg "github.com/beaconhq/beacon/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	DataDir       string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Run starts the HTTP server plus the optional demo producer and retention
// loop, and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context; layer a
	// local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{DataDir: storeDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval, Config: opts.Config})
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := &logpkg.Config{
		Level:  getenvDefault("BEACON_LOG_LEVEL", "info"),
		Format: getenvDefault("BEACON_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	procLogger.Info("Starting Beacon server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("level", cfg.Level),
		logpkg.Str("format", cfg.Format),
		logpkg.Str("topic", opts.Config.DefaultTopic),
		logpkg.Bool("producer", opts.Config.Producer.Enabled),
	)

	hsrv := httpserver.New(rt, procLogger.With(logpkg.Component("http")))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			procLogger.With(logpkg.Err(err)).Error("http server failed")
		}
	}()

	if opts.Config.Producer.Enabled {
		p := producerpkg.New(hsrv.Service(), opts.Config.DefaultTopic, opts.Config.Producer, procLogger.With(logpkg.Component("producer")))
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(sctx)
		}()
	}

	// Topic metadata can override the global limits, so the loop runs
	// whenever an interval is configured.
	if r := opts.Config.Retention; r.IntervalMs > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			retentionLoop(sctx, rt, r, procLogger.With(logpkg.Component("retention")))
		}()
	}

	<-sctx.Done()
	// Drain the HTTP server before closing the runtime/DB to avoid races.
	hsrv.Close()
	wg.Wait()
	return nil
}

// retentionLoop trims every known topic on the configured interval.
func retentionLoop(ctx context.Context, rt *runtime.Runtime, r cfgpkg.RetentionConfig, logger logpkg.Logger) {
	t := time.NewTicker(time.Duration(r.IntervalMs) * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		metas, err := rt.ListTopics()
		if err != nil {
			logger.With(logpkg.Err(err)).Warn("retention.list_failed")
			continue
		}
		for _, m := range metas {
			l, err := rt.OpenLog(m.Name)
			if err != nil {
				logger.With(logpkg.Str("topic", m.Name), logpkg.Err(err)).Warn("retention.open_failed")
				continue
			}
			// Topic metadata overrides the global policy when set.
			maxAge, maxBytes := r.MaxAgeMs, r.MaxBytes
			if m.MaxAgeMs > 0 {
				maxAge = m.MaxAgeMs
			}
			if m.MaxBytes > 0 {
				maxBytes = m.MaxBytes
			}
			if maxAge > 0 {
				cutoff := time.Now().Add(-time.Duration(maxAge) * time.Millisecond).UnixMilli()
				if n, _, err := l.TrimOlderThan(ctx, cutoff, 2048, 0); err != nil {
					logger.With(logpkg.Str("topic", m.Name), logpkg.Err(err)).Warn("retention.age_trim_failed")
				} else if n > 0 {
					logger.With(logpkg.Str("topic", m.Name), logpkg.Int("deleted", n)).Debug("retention.age_trim")
				}
			}
			if maxBytes > 0 {
				if n, err := l.TrimToMaxBytes(ctx, maxBytes, 2048, 0); err != nil {
					logger.With(logpkg.Str("topic", m.Name), logpkg.Err(err)).Warn("retention.bytes_trim_failed")
				} else if n > 0 {
					logger.With(logpkg.Str("topic", m.Name), logpkg.Int("deleted", n)).Debug("retention.bytes_trim")
				}
			}
		}
	}
}
