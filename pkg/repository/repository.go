package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/bft-labs/repokit/pkg/failure"
	"github.com/bft-labs/repokit/pkg/log"
	"github.com/bft-labs/repokit/pkg/result"
)

// Repository combines a remote and a local data source under a Strategy.
// Every operation returns a result.Result; no operation panics or returns
// a bare error. A Repository is safe for concurrent use if its sources are.
type Repository[E any, M Model[E]] struct {
	remote     RemoteDataSource[M]
	local      LocalDataSource[E]
	toModel    func(E) M
	cacheQuery func(context.Context, LocalDataSource[E], []E) error
	match      func(E, string) bool

	strategy  Strategy
	effective Strategy

	logger        log.Logger
	observer      Observer
	mirrorTimeout time.Duration
}

// New validates cfg and builds a Repository.
//
// A hybrid strategy given only one of its sources runs as the matching
// single-source strategy; the degradation is logged at warn level.
func New[E any, M Model[E]](cfg Config[E, M], opts ...Option) (*Repository[E, M], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	effective, err := effectiveStrategy(cfg.Strategy, present(cfg.Remote), present(cfg.Local))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if effective.usesRemote() && cfg.ToModel == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingToModel)
	}
	if effective != cfg.Strategy {
		o.logger.Warn("strategy degraded to available data source",
			log.Strategy(cfg.Strategy),
			log.String("effective", effective.String()),
		)
	}

	r := &Repository[E, M]{
		toModel:       cfg.ToModel,
		cacheQuery:    cfg.CacheQueryResults,
		match:         cfg.Match,
		strategy:      cfg.Strategy,
		effective:     effective,
		logger:        o.logger,
		observer:      o.observer,
		mirrorTimeout: o.mirrorTimeout,
	}
	if effective.usesRemote() {
		r.remote = cfg.Remote
	}
	if effective.usesLocal() {
		r.local = cfg.Local
	}
	if r.cacheQuery == nil {
		r.cacheQuery = ReplaceAll[E]
	}
	return r, nil
}

// present reports whether a source is set. A nil pointer stored in the
// interface counts as missing.
func present(source any) bool {
	if source == nil {
		return false
	}
	v := reflect.ValueOf(source)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice:
		return !v.IsNil()
	}
	return true
}

func effectiveStrategy(s Strategy, hasRemote, hasLocal bool) (Strategy, error) {
	switch s {
	case RemoteOnly:
		if !hasRemote {
			return s, ErrMissingRemote
		}
	case LocalOnly:
		if !hasLocal {
			return s, ErrMissingLocal
		}
	case RemoteWithLocalCache, LocalWithRemoteFallback:
		switch {
		case !hasRemote && !hasLocal:
			return s, ErrNoDataSource
		case !hasRemote:
			return LocalOnly, nil
		case !hasLocal:
			return RemoteOnly, nil
		}
	default:
		return s, fmt.Errorf("%w: %d", ErrInvalidStrategy, int(s))
	}
	return s, nil
}

// Strategy returns the strategy the repository was configured with.
func (r *Repository[E, M]) Strategy() Strategy { return r.strategy }

// EffectiveStrategy returns the strategy in force after degradation.
func (r *Repository[E, M]) EffectiveStrategy() Strategy { return r.effective }

// GetAll returns every entity.
func (r *Repository[E, M]) GetAll(ctx context.Context) result.Result[[]E] {
	start := time.Now()
	res, src := r.getAll(ctx)
	r.record(OpGetAll, src, res.IsError(), failureOf(res), start)
	return res
}

func (r *Repository[E, M]) getAll(ctx context.Context) (result.Result[[]E], Source) {
	switch r.effective {
	case RemoteOnly:
		return r.fetchList(ctx, r.remote.GetAll), SourceRemote

	case LocalOnly:
		return localCall(ctx, r.local.GetAll), SourceLocal

	case RemoteWithLocalCache:
		res := r.fetchList(ctx, r.remote.GetAll)
		if res.IsSuccess() {
			entities := res.Data()
			r.mirror(ctx, OpGetAll, func(ctx context.Context) error {
				return r.local.SaveAll(ctx, entities)
			})
		}
		return res, SourceRemote

	case LocalWithRemoteFallback:
		cached := localCall(ctx, r.local.GetAll)
		if cached.IsSuccess() && len(cached.Data()) > 0 {
			r.observer.OnCacheHit(OpGetAll)
			return cached, SourceLocal
		}
		r.cacheMiss(OpGetAll, cached.IsError(), failureOf(cached))
		return r.fetchList(ctx, r.remote.GetAll), SourceRemote
	}
	return unreachable[[]E](r.effective), SourceNone
}

// GetByID returns the entity with the given id.
func (r *Repository[E, M]) GetByID(ctx context.Context, id string) result.Result[E] {
	start := time.Now()
	res, src := r.getByID(ctx, id)
	r.record(OpGetByID, src, res.IsError(), failureOf(res), start)
	return res
}

func (r *Repository[E, M]) getByID(ctx context.Context, id string) (result.Result[E], Source) {
	fetch := func(ctx context.Context) (M, error) { return r.remote.GetByID(ctx, id) }
	lookup := func(ctx context.Context) (E, error) { return r.local.GetByID(ctx, id) }

	switch r.effective {
	case RemoteOnly:
		return r.fetchOne(ctx, fetch), SourceRemote

	case LocalOnly:
		return notFoundAware(localCall(ctx, lookup), id), SourceLocal

	case RemoteWithLocalCache:
		res := r.fetchOne(ctx, fetch)
		if res.IsSuccess() {
			entity := res.Data()
			r.mirror(ctx, OpGetByID, func(ctx context.Context) error {
				return r.local.Save(ctx, entity)
			})
		}
		return res, SourceRemote

	case LocalWithRemoteFallback:
		cached := localCall(ctx, lookup)
		if cached.IsSuccess() {
			r.observer.OnCacheHit(OpGetByID)
			return cached, SourceLocal
		}
		r.cacheMiss(OpGetByID, cached.IsError(), failureOf(cached))
		return r.fetchOne(ctx, fetch), SourceRemote
	}
	return unreachable[E](r.effective), SourceNone
}

// Create stores a new entity and returns the stored version.
func (r *Repository[E, M]) Create(ctx context.Context, entity E) result.Result[E] {
	start := time.Now()
	res, src := r.write(ctx, OpCreate, entity, func(ctx context.Context, m M) (M, error) {
		return r.remote.Create(ctx, m)
	})
	r.record(OpCreate, src, res.IsError(), failureOf(res), start)
	return res
}

// Update replaces an existing entity and returns the stored version.
func (r *Repository[E, M]) Update(ctx context.Context, entity E) result.Result[E] {
	start := time.Now()
	res, src := r.write(ctx, OpUpdate, entity, func(ctx context.Context, m M) (M, error) {
		return r.remote.Update(ctx, m)
	})
	r.record(OpUpdate, src, res.IsError(), failureOf(res), start)
	return res
}

func (r *Repository[E, M]) write(ctx context.Context, op Operation, entity E, send func(context.Context, M) (M, error)) (result.Result[E], Source) {
	if r.effective == LocalOnly {
		return localCall(ctx, func(ctx context.Context) (E, error) {
			return entity, r.local.Save(ctx, entity)
		}), SourceLocal
	}

	res := r.fetchOne(ctx, func(ctx context.Context) (M, error) {
		return send(ctx, r.toModel(entity))
	})
	if res.IsSuccess() && r.local != nil {
		stored := res.Data()
		r.mirror(ctx, op, func(ctx context.Context) error {
			return r.local.Save(ctx, stored)
		})
	}
	return res, SourceRemote
}

// Delete removes the entity with the given id.
func (r *Repository[E, M]) Delete(ctx context.Context, id string) result.Result[struct{}] {
	start := time.Now()
	res, src := r.delete(ctx, id)
	r.record(OpDelete, src, res.IsError(), failureOf(res), start)
	return res
}

func (r *Repository[E, M]) delete(ctx context.Context, id string) (result.Result[struct{}], Source) {
	if r.effective == LocalOnly {
		return localCall(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, r.local.Delete(ctx, id)
		}), SourceLocal
	}

	res := result.SafeCall(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.remote.Delete(ctx, id)
	})
	if res.IsSuccess() && r.local != nil {
		r.mirror(ctx, OpDelete, func(ctx context.Context) error {
			return r.local.Delete(ctx, id)
		})
	}
	return res, SourceRemote
}

// Search returns the entities matching query.
func (r *Repository[E, M]) Search(ctx context.Context, query string) result.Result[[]E] {
	start := time.Now()
	res, src := r.search(ctx, query)
	r.record(OpSearch, src, res.IsError(), failureOf(res), start)
	return res
}

func (r *Repository[E, M]) search(ctx context.Context, query string) (result.Result[[]E], Source) {
	if r.effective == LocalOnly {
		if r.match == nil {
			return result.Error[[]E](failure.Cache("search needs a remote data source or a match function", nil)), SourceLocal
		}
		return result.Map(localCall(ctx, r.local.GetAll), func(all []E) []E {
			out := make([]E, 0, len(all))
			for _, e := range all {
				if r.match(e, query) {
					out = append(out, e)
				}
			}
			return out
		}), SourceLocal
	}

	res := r.fetchList(ctx, func(ctx context.Context) ([]M, error) {
		return r.remote.Search(ctx, query)
	})
	r.cacheQueryResults(ctx, OpSearch, res)
	return res, SourceRemote
}

// GetPaginated returns one page of entities.
func (r *Repository[E, M]) GetPaginated(ctx context.Context, page PageRequest) result.Result[[]E] {
	start := time.Now()
	res, src := r.getPaginated(ctx, page)
	r.record(OpGetPaginated, src, res.IsError(), failureOf(res), start)
	return res
}

func (r *Repository[E, M]) getPaginated(ctx context.Context, page PageRequest) (result.Result[[]E], Source) {
	if fields := validatePage(page); len(fields) > 0 {
		return result.Error[[]E](failure.Validation("invalid page request", fields)), SourceNone
	}

	if r.effective == LocalOnly {
		return result.Map(localCall(ctx, r.local.GetAll), func(all []E) []E {
			return paginate(all, page)
		}), SourceLocal
	}

	res := r.fetchList(ctx, func(ctx context.Context) ([]M, error) {
		return r.remote.GetPaginated(ctx, page)
	})
	r.cacheQueryResults(ctx, OpGetPaginated, res)
	return res, SourceRemote
}

func (r *Repository[E, M]) cacheQueryResults(ctx context.Context, op Operation, res result.Result[[]E]) {
	if res.IsError() || r.local == nil {
		return
	}
	entities := res.Data()
	r.mirror(ctx, op, func(ctx context.Context) error {
		return r.cacheQuery(ctx, r.local, entities)
	})
}

// fetchList calls a remote list operation and maps models to entities.
func (r *Repository[E, M]) fetchList(ctx context.Context, call func(context.Context) ([]M, error)) result.Result[[]E] {
	return result.SafeRemoteCall(ctx,
		func(ctx context.Context) result.Result[[]M] { return result.SafeCall(ctx, call) },
		result.Hooks[[]M, []E]{OnSuccess: toEntities[E, M]},
	)
}

// fetchOne calls a remote single-item operation and maps the model.
func (r *Repository[E, M]) fetchOne(ctx context.Context, call func(context.Context) (M, error)) result.Result[E] {
	return result.SafeRemoteCall(ctx,
		func(ctx context.Context) result.Result[M] { return result.SafeCall(ctx, call) },
		result.Hooks[M, E]{OnSuccess: func(m M) (E, error) { return m.ToEntity(), nil }},
	)
}

func (r *Repository[E, M]) mirror(ctx context.Context, op Operation, fn func(context.Context) error) {
	if err := runBestEffort(ctx, r.mirrorTimeout, fn); err != nil {
		r.logger.Warn("cache mirror failed",
			log.Op(string(op)),
			log.Strategy(r.effective),
			log.Err(err),
		)
		r.observer.OnMirrorFailure(op, err)
	}
}

func (r *Repository[E, M]) cacheMiss(op Operation, failed bool, f failure.Failure) {
	var err error
	if failed {
		err = f
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("local read failed, falling back to remote",
				log.Op(string(op)),
				log.Failure(err),
			)
		}
	}
	r.observer.OnCacheMiss(op, err)
}

func (r *Repository[E, M]) record(op Operation, src Source, failed bool, f failure.Failure, start time.Time) {
	var err error
	if failed {
		err = f
		r.logger.Debug("repository operation failed",
			log.Op(string(op)),
			log.Source(string(src)),
			log.Failure(err),
		)
	}
	r.observer.OnOutcome(op, r.effective, src, err, time.Since(start))
}

// localCall runs a local source operation and reports any failure as a
// cache failure.
func localCall[T any](ctx context.Context, op func(context.Context) (T, error)) result.Result[T] {
	res := result.SafeCall(ctx, op)
	if res.IsError() {
		f := res.Failure()
		if f.Kind != failure.KindCache {
			return result.Error[T](failure.Cache("", f))
		}
	}
	return res
}

func notFoundAware[E any](res result.Result[E], id string) result.Result[E] {
	if res.IsError() && errors.Is(res.Failure(), ErrNotFound) {
		return result.Error[E](failure.Cache(fmt.Sprintf("entity %q not found in local cache", id), ErrNotFound))
	}
	return res
}

func toEntities[E any, M Model[E]](models []M) ([]E, error) {
	out := make([]E, 0, len(models))
	for _, m := range models {
		out = append(out, m.ToEntity())
	}
	return out, nil
}

func failureOf[T any](res result.Result[T]) failure.Failure {
	if res.IsError() {
		return res.Failure()
	}
	return failure.Failure{}
}

func unreachable[T any](s Strategy) result.Result[T] {
	return result.Error[T](failure.Generic(fmt.Sprintf("unsupported strategy %s", s), nil))
}

func validatePage(p PageRequest) map[string]string {
	fields := map[string]string{}
	if p.Page < 1 {
		fields["page"] = "must be at least 1"
	}
	if p.Limit < 1 {
		fields["limit"] = "must be at least 1"
	}
	return fields
}

// paginate slices a local listing. SortBy is not interpreted locally;
// Descending reverses the stored order.
func paginate[E any](all []E, p PageRequest) []E {
	ordered := all
	if p.Descending {
		ordered = make([]E, len(all))
		for i, e := range all {
			ordered[len(all)-1-i] = e
		}
	}
	start := p.Offset()
	if start >= len(ordered) {
		return []E{}
	}
	end := min(start+p.Limit, len(ordered))
	return append([]E(nil), ordered[start:end]...)
}
