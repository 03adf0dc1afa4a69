package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bft-labs/repokit/internal/adapters/fs"
	httpsource "github.com/bft-labs/repokit/internal/adapters/http"
	"github.com/bft-labs/repokit/internal/adapters/memory"
	redisstore "github.com/bft-labs/repokit/internal/adapters/redis"
	"github.com/bft-labs/repokit/internal/cliconfig"
	"github.com/bft-labs/repokit/internal/domain"
	"github.com/bft-labs/repokit/internal/metrics"
	"github.com/bft-labs/repokit/internal/ports"
	"github.com/bft-labs/repokit/pkg/log"
	"github.com/bft-labs/repokit/pkg/repository"
)

type noteRepository = repository.Repository[domain.Note, domain.NoteModel]

// deps is the object graph behind one CLI invocation.
type deps struct {
	repo     *noteRepository
	registry *prometheus.Registry
	metrics  *metrics.Observer

	// watcher is set for the file cache backend so sync can follow edits
	// made by other processes.
	watcher ports.Watcher

	closers []func() error
}

func build(ctx context.Context, cfg cliconfig.Config, logger log.Logger) (*deps, error) {
	d := &deps{registry: prometheus.NewRegistry()}
	d.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.metrics = metrics.NewObserver(d.registry)

	repoCfg := repository.Config[domain.Note, domain.NoteModel]{
		Strategy: cfg.Strategy,
		ToModel:  domain.NoteToModel,
		Match:    domain.Note.Matches,
	}

	if cfg.Strategy != repository.LocalOnly {
		remote, err := httpsource.NewSource(httpsource.Config[domain.NoteModel]{
			BaseURL:  cfg.ServiceURL,
			Resource: cfg.Resource,
			AuthKey:  cfg.AuthKey,
			IDOf:     domain.NoteModelID,
		}, &http.Client{Timeout: cfg.HTTPTimeout}, logger)
		if err != nil {
			return nil, err
		}
		repoCfg.Remote = remote
	}

	if cfg.Strategy != repository.RemoteOnly {
		local, err := d.local(ctx, cfg, logger)
		if err != nil {
			d.close()
			return nil, err
		}
		repoCfg.Local = local
	}

	repo, err := repository.New(repoCfg,
		repository.WithLogger(logger),
		repository.WithObserver(d.metrics),
		repository.WithMirrorTimeout(cfg.MirrorTimeout),
	)
	if err != nil {
		d.close()
		return nil, fmt.Errorf("create repository: %w", err)
	}
	d.repo = repo
	return d, nil
}

func (d *deps) local(ctx context.Context, cfg cliconfig.Config, logger log.Logger) (repository.LocalDataSource[domain.Note], error) {
	switch cfg.CacheBackend {
	case cliconfig.BackendMemory:
		return memory.NewStore(domain.NoteID), nil

	case cliconfig.BackendRedis:
		rdb, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, rdb.Close)
		return redisstore.NewStore(rdb, cfg.Resource, domain.NoteID), nil

	default:
		if err := os.MkdirAll(cfg.CacheDir, 0o700); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		store := fs.NewStore(cfg.CacheDir, cfg.Resource+".json", domain.NoteID, logger)
		d.watcher = store
		return store, nil
	}
}

func (d *deps) close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	d.closers = nil
	return errors.Join(errs...)
}
