package catalog

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/guonaihong/gout"
	"github.com/pkg/errors"

	"github.com/crazycars/storefront/internal/models"
)

// TopicUpdated is published on the container bus after a fetch installs a
// fresh catalog snapshot.
const TopicUpdated = "storefront:catalog:updated"

// State is what consumers of the fetcher see: the classic
// loading / error / data triple, plus whether the data being served is a
// stale snapshot kept after a failed refresh.
type State struct {
	Loading   bool
	Err       error
	Data      []models.Product
	HasData   bool
	Stale     bool
	FetchedAt time.Time
}

// Client fetches the full product catalog from the remote CrazyCars API.
//
// Concurrency policy is last-call-wins: every Fetch bumps a generation
// counter, and a result arriving for an older generation is discarded, never
// merged. There is no request queue.
type Client struct {
	baseURL string
	timeout time.Duration
	retry   RetryPolicy
	cache   *Cache
	bus     EventBus.BusPublisher

	mu         sync.Mutex
	generation uint64
	loading    bool
	lastErr    error
	data       []models.Product
	hasData    bool
	stale      bool
	fetchedAt  time.Time
}

// NewClient builds a catalog client. ttl controls the snapshot cache; pass 0
// to always go remote. A retry policy with fewer than one attempt still
// performs a single try - zero attempts would otherwise install an empty
// catalog without ever touching the network.
func NewClient(baseURL string, retry RetryPolicy, ttl time.Duration) *Client {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Client{
		baseURL: baseURL,
		timeout: 10 * time.Second,
		retry:   retry,
		cache:   NewCache(ttl),
	}
}

// AttachBus wires the container's event bus. Called once during setup.
func (c *Client) AttachBus(bus EventBus.BusPublisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bus = bus
}

func (c *Client) cacheKey() string {
	return c.baseURL + "/products"
}

// catalogResponse is the wire shape of the catalog endpoint.
type catalogResponse struct {
	Data []models.Product `json:"data"`
}

// fetchOnce performs a single HTTP round trip.
func (c *Client) fetchOnce(ctx context.Context) ([]models.Product, error) {
	var resp catalogResponse
	var code int

	err := gout.GET(c.baseURL + "/products").
		WithContext(ctx).
		SetTimeout(c.timeout).
		Code(&code).
		BindJSON(&resp).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "catalog request failed")
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("catalog request failed: status %d", code)
	}
	return resp.Data, nil
}

// Fetch retrieves the full catalog, consulting the TTL cache first and
// applying the retry policy on failures. The installed state always reflects
// the NEWEST call: if another Fetch started while this one was in flight,
// this one's result is thrown away.
func (c *Client) Fetch(ctx context.Context) ([]models.Product, error) {
	if cached, ok := c.cache.Get(c.cacheKey()); ok {
		return cached, nil
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.loading = true
	c.mu.Unlock()

	reqID := uuid.NewString()[:8]

	var data []models.Product
	var err error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if delay := c.retry.Delay(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				// Cancelled mid-backoff. This must still run the normal
				// finalization below, or the loading flag would stay stuck.
				err = ctx.Err()
			case <-time.After(delay):
			}
			if err != nil {
				break
			}
		}
		data, err = c.fetchOnce(ctx)
		if err == nil {
			break
		}
		log.Printf("Catalog fetch [%s] attempt %d/%d failed: %v", reqID, attempt, c.retry.MaxAttempts, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		// A newer Fetch superseded this one while we were in flight.
		// Its result owns the state now; discard ours entirely.
		log.Printf("Catalog fetch [%s] superseded, discarding result", reqID)
		return nil, errors.New("fetch superseded by a newer call")
	}
	c.loading = false

	if err != nil {
		c.lastErr = err
		if c.hasData {
			// Keep serving the previous snapshot, flagged stale. References
			// added upstream since then simply won't resolve; that is
			// accepted best-effort behavior.
			c.stale = true
		}
		return nil, err
	}

	c.lastErr = nil
	c.data = data
	c.hasData = true
	c.stale = false
	c.fetchedAt = time.Now()
	c.cache.Set(c.cacheKey(), data)
	if c.bus != nil {
		c.bus.Publish(TopicUpdated)
	}
	log.Printf("Catalog fetch [%s] succeeded: %d products", reqID, len(data))
	return data, nil
}

// Refetch drops the cached snapshot and fetches again. Idempotent from the
// consumer's point of view: the newest call wins regardless of how many are
// issued.
func (c *Client) Refetch(ctx context.Context) ([]models.Product, error) {
	c.cache.Invalidate(c.cacheKey())
	return c.Fetch(ctx)
}

// Snapshot returns the current fetcher state for consumers. The Data slice is
// shared but treated as immutable once installed.
func (c *Client) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Loading:   c.loading,
		Err:       c.lastErr,
		Data:      c.data,
		HasData:   c.hasData,
		Stale:     c.stale,
		FetchedAt: c.fetchedAt,
	}
}
