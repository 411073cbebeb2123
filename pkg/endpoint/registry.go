package endpoint

import (
    "context"
    "encoding/json"
    "errors"
    "sort"
    "sync"

    "github.com/amirimatin/go-ftlconn/pkg/connection"
    "github.com/amirimatin/go-ftlconn/pkg/observability/metrics"
)

// Registry is an in-memory set of live endpoints keyed by ID.
type Registry struct {
    mu        sync.RWMutex
    endpoints map[string]*Endpoint
}

func NewRegistry() *Registry { return &Registry{endpoints: make(map[string]*Endpoint)} }

// Open opens an endpoint and registers it. The endpoint is dropped from the
// registry when its transport stops on its own.
func (r *Registry) Open(ctx context.Context, c connection.Creator, opts Options) (*Endpoint, error) {
    idc := make(chan string, 1)
    onClosed := opts.OnClosed
    opts.OnClosed = func() {
        r.Remove(<-idc)
        if onClosed != nil { onClosed() }
    }
    e, err := Open(ctx, c, opts)
    if err != nil { return nil, err }
    r.Add(e)
    idc <- e.ID()
    return e, nil
}

func (r *Registry) Add(e *Endpoint) {
    r.mu.Lock(); defer r.mu.Unlock()
    r.endpoints[e.ID()] = e
    metrics.Endpoints.Set(float64(len(r.endpoints)))
}

// Remove forgets the endpoint without closing it.
func (r *Registry) Remove(id string) *Endpoint {
    r.mu.Lock(); defer r.mu.Unlock()
    e := r.endpoints[id]
    delete(r.endpoints, id)
    metrics.Endpoints.Set(float64(len(r.endpoints)))
    return e
}

func (r *Registry) Get(id string) (*Endpoint, bool) {
    r.mu.RLock(); defer r.mu.RUnlock()
    e, ok := r.endpoints[id]
    return e, ok
}

func (r *Registry) Len() int {
    r.mu.RLock(); defer r.mu.RUnlock()
    return len(r.endpoints)
}

// List returns endpoint infos sorted by ID.
func (r *Registry) List() []Info {
    r.mu.RLock()
    arr := make([]Info, 0, len(r.endpoints))
    for _, e := range r.endpoints { arr = append(arr, e.Info()) }
    r.mu.RUnlock()
    sort.Slice(arr, func(i, j int) bool { return arr[i].ID < arr[j].ID })
    return arr
}

// Snapshot encodes the registry as stable JSON for the management API.
func (r *Registry) Snapshot() ([]byte, error) {
    return json.Marshal(struct{
        Version   int    `json:"version"`
        Endpoints []Info `json:"endpoints"`
    }{Version: 1, Endpoints: r.List()})
}

// Close closes and forgets every endpoint.
func (r *Registry) Close() error {
    r.mu.Lock()
    all := make([]*Endpoint, 0, len(r.endpoints))
    for _, e := range r.endpoints { all = append(all, e) }
    r.endpoints = make(map[string]*Endpoint)
    metrics.Endpoints.Set(0)
    r.mu.Unlock()
    var errs []error
    for _, e := range all {
        if err := e.Close(); err != nil { errs = append(errs, err) }
    }
    return errors.Join(errs...)
}
