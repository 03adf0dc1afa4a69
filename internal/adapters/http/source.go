package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bft-labs/repokit/internal/ports"
	"github.com/bft-labs/repokit/pkg/failure"
	"github.com/bft-labs/repokit/pkg/log"
	"github.com/bft-labs/repokit/pkg/repository"
)

// maxErrorBody caps how much of an error response is kept for the classifier.
const maxErrorBody = 64 << 10

// Config configures a Source.
type Config[M any] struct {
	// BaseURL is the service root, e.g. "https://api.example.com/v1".
	BaseURL string

	// Resource is the collection path segment, e.g. "notes".
	Resource string

	// AuthKey is sent as a bearer token when non-empty.
	AuthKey string

	// IDOf returns the id used in item URLs for Update.
	IDOf func(M) string
}

// Source implements repository.RemoteDataSource over a JSON REST API.
//
// Routes:
//
//	GET    /{resource}                     GetAll
//	GET    /{resource}?q=...               Search
//	GET    /{resource}?page=..&limit=..    GetPaginated
//	GET    /{resource}/{id}                GetByID
//	POST   /{resource}                     Create
//	PUT    /{resource}/{id}                Update
//	DELETE /{resource}/{id}                Delete
//
// Transport problems and non-2xx responses are returned as
// *failure.TransportError. Models are validated with their `validate`
// struct tags before Create and Update.
type Source[M any] struct {
	cfg      Config[M]
	client   ports.HTTPClient
	validate *validator.Validate
	logger   log.Logger
}

var _ repository.RemoteDataSource[struct{}] = (*Source[struct{}])(nil)

// NewSource creates a REST-backed remote data source.
func NewSource[M any](cfg Config[M], client ports.HTTPClient, logger log.Logger) (*Source[M], error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("http source: base URL is required")
	}
	if cfg.Resource == "" {
		return nil, errors.New("http source: resource is required")
	}
	if cfg.IDOf == nil {
		return nil, errors.New("http source: IDOf is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.Resource = strings.Trim(cfg.Resource, "/")

	return &Source[M]{
		cfg:      cfg,
		client:   client,
		validate: newValidator(),
		logger:   logger,
	}, nil
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// GetAll fetches the whole collection.
func (s *Source[M]) GetAll(ctx context.Context) ([]M, error) {
	var out []M
	err := s.do(ctx, http.MethodGet, s.collectionURL(nil), nil, &out)
	return out, err
}

// GetByID fetches a single item.
func (s *Source[M]) GetByID(ctx context.Context, id string) (M, error) {
	var out M
	err := s.do(ctx, http.MethodGet, s.itemURL(id), nil, &out)
	return out, err
}

// Create posts a new item and returns the stored version.
func (s *Source[M]) Create(ctx context.Context, model M) (M, error) {
	var out M
	if err := s.validate.StructCtx(ctx, model); err != nil {
		return out, err
	}
	err := s.do(ctx, http.MethodPost, s.collectionURL(nil), model, &out)
	return out, err
}

// Update replaces an item and returns the stored version.
func (s *Source[M]) Update(ctx context.Context, model M) (M, error) {
	var out M
	if err := s.validate.StructCtx(ctx, model); err != nil {
		return out, err
	}
	err := s.do(ctx, http.MethodPut, s.itemURL(s.cfg.IDOf(model)), model, &out)
	return out, err
}

// Delete removes an item.
func (s *Source[M]) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, s.itemURL(id), nil, nil)
}

// Search queries the collection with a free-text filter.
func (s *Source[M]) Search(ctx context.Context, query string) ([]M, error) {
	var out []M
	err := s.do(ctx, http.MethodGet, s.collectionURL(url.Values{"q": {query}}), nil, &out)
	return out, err
}

// GetPaginated fetches one page of the collection.
func (s *Source[M]) GetPaginated(ctx context.Context, page repository.PageRequest) ([]M, error) {
	q := url.Values{
		"page":  {strconv.Itoa(page.Page)},
		"limit": {strconv.Itoa(page.Limit)},
	}
	if page.SortBy != "" {
		q.Set("sort", page.SortBy)
		order := "asc"
		if page.Descending {
			order = "desc"
		}
		q.Set("order", order)
	}
	var out []M
	err := s.do(ctx, http.MethodGet, s.collectionURL(q), nil, &out)
	return out, err
}

func (s *Source[M]) collectionURL(q url.Values) string {
	u := s.cfg.BaseURL + "/" + s.cfg.Resource
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (s *Source[M]) itemURL(id string) string {
	return s.cfg.BaseURL + "/" + s.cfg.Resource + "/" + url.PathEscape(id)
}

// do sends one request. A nil in skips the body, a nil out discards the
// response body.
func (s *Source[M]) do(ctx context.Context, method, target string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cfg.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.AuthKey)
	}

	s.logger.Debug("remote request",
		log.String("method", method),
		log.String("url", target),
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return &failure.TransportError{Kind: transportKind(ctx, err), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &failure.TransportError{
			Kind:       failure.TransportBadResponse,
			StatusCode: resp.StatusCode,
			Body:       respBody,
		}
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &failure.TransportError{Kind: transportKind(ctx, err), StatusCode: resp.StatusCode, Cause: err}
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		// An empty collection is a valid answer; a missing item is not.
		if reflect.TypeOf(out).Elem().Kind() == reflect.Slice {
			return nil
		}
		return fmt.Errorf("%s %s: %w", method, target, failure.ErrNoData)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// transportKind maps a client.Do error to a transport kind.
func transportKind(ctx context.Context, err error) failure.TransportKind {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return failure.TransportCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failure.TransportReceiveTimeout
	}

	var opErr *net.OpError
	isDial := errors.As(err, &opErr) && opErr.Op == "dial"

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		if isDial {
			return failure.TransportConnectTimeout
		}
		return failure.TransportReceiveTimeout
	}
	return failure.TransportConnectionError
}
