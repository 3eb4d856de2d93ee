// Package coordinator wires the Assignor's Coordinator and ConfigSnapshot
// collaborators to a plain HTTP/JSON configuration-snapshot endpoint, the
// same transport cmd/assignor reaches for elsewhere to talk to peers.
package coordinator

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"sort"
	"time"

	"code.cloudfoundry.org/connect-assignor/internal/assign"
)

// Snapshot is the wire shape of a configuration-snapshot response: the
// monotonic offset plus every configured connector's task count.
type Snapshot struct {
	SnapshotOffset int64          `json:"offset"`
	ConnectorTasks map[string]int `json:"connector_tasks"`
}

// Offset returns the snapshot's monotonic offset.
func (s *Snapshot) Offset() int64 {
	if s == nil {
		return 0
	}
	return s.SnapshotOffset
}

// Connectors returns every configured connector id.
func (s *Snapshot) Connectors() []assign.ConnectorId {
	if s == nil {
		return nil
	}
	out := make([]assign.ConnectorId, 0, len(s.ConnectorTasks))
	for c := range s.ConnectorTasks {
		out = append(out, assign.ConnectorId(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Tasks returns the contiguous task ids 0..n-1 configured for c.
func (s *Snapshot) Tasks(c assign.ConnectorId) []assign.TaskId {
	if s == nil {
		return nil
	}
	n, ok := s.ConnectorTasks[string(c)]
	if !ok {
		return nil
	}
	out := make([]assign.TaskId, n)
	for i := 0; i < n; i++ {
		out[i] = assign.TaskId{Connector: c, Index: i}
	}
	return out
}

// Fetcher retrieves a Snapshot from a configuration-snapshot endpoint over
// plain HTTP, the way cmd/assignor's leadership check reaches its peer.
type Fetcher struct {
	url    string
	client *http.Client
	log    *log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetcherLogger sets the logger used to report fetch failures.
func WithFetcherLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.log = l
	}
}

// WithFetcherTimeout sets the HTTP client timeout. Defaults to 5 seconds.
func WithFetcherTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithFetcherTLSConfig arms the client to dial the snapshot endpoint over
// mutual TLS.
func WithFetcherTLSConfig(c *tls.Config) FetcherOption {
	return func(f *Fetcher) {
		f.client.Transport = &http.Transport{TLSClientConfig: c}
	}
}

// NewFetcher returns a Fetcher that reads from url.
func NewFetcher(url string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log.New(ioutil.Discard, "", 0),
	}

	for _, o := range opts {
		o(f)
	}

	return f
}

// Fetch retrieves and decodes the current Snapshot.
func (f *Fetcher) Fetch() (*Snapshot, error) {
	resp, err := f.client.Get(f.url)
	if err != nil {
		return nil, fmt.Errorf("coordinator: fetching snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coordinator: snapshot endpoint returned %d", resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("coordinator: decoding snapshot: %w", err)
	}

	return &snap, nil
}
