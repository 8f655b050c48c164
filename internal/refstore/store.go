package refstore

import (
	"errors"
	"log"
	"sync"

	"github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"

	"github.com/crazycars/storefront/internal/models"
	"github.com/crazycars/storefront/internal/storage"
)

var jsonit = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind selects which persisted collection a store manages.
type Kind string

const (
	KindCart     Kind = "cart"
	KindWishlist Kind = "wishlist"
)

// Fixed storage keys, one per collection kind. These match the keys the old
// frontend used in localStorage so an exported blob stays readable.
const (
	cartKey     = "crazycars_cart"
	wishlistKey = "crazycars_wishlist"
)

// TopicChanged is published on the container bus after every successful
// mutation. Subscribers get the Kind of the store that changed.
const TopicChanged = "storefront:refs:changed"

// ToggleAction reports which way a wishlist Toggle went. The UI shows
// different feedback for the two cases, so this must be deterministic.
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
)

// ErrNoSuchReference is returned when an update targets an id that is not in
// the collection.
var ErrNoSuchReference = errors.New("no reference with that id")

// Store is a durable, ordered collection of references for one Kind.
//
// Every mutation rewrites the FULL collection to the backend synchronously.
// A failed write is logged and otherwise ignored: the in-memory state stays
// correct and the next successful write catches persistence up.
type Store struct {
	mu      sync.Mutex
	kind    Kind
	backend storage.Backend
	bus     EventBus.BusPublisher // optional, attached by the pipeline container
	items   []models.Reference
}

// New builds a store and loads whatever the backend holds under this kind's
// key. A missing or unreadable blob just means an empty collection.
func New(kind Kind, backend storage.Backend) *Store {
	s := &Store{kind: kind, backend: backend}
	s.load()
	return s
}

// AttachBus wires the container's event bus so mutations can trigger a
// pipeline recompute. Called once during container setup.
func (s *Store) AttachBus(bus EventBus.BusPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bus = bus
}

// Kind returns which collection this store manages.
func (s *Store) Kind() Kind {
	return s.kind
}

func (s *Store) storageKey() string {
	if s.kind == KindWishlist {
		return wishlistKey
	}
	return cartKey
}

func (s *Store) load() {
	blob, err := s.backend.Get(s.storageKey())
	if err != nil {
		log.Printf("WARNING: Could not read persisted %s collection: %v. Starting empty.", s.kind, err)
		return
	}
	if blob == nil {
		return // first run, nothing persisted yet
	}
	var items []models.Reference
	if err := jsonit.Unmarshal(blob, &items); err != nil {
		log.Printf("WARNING: Persisted %s collection is corrupt: %v. Starting empty.", s.kind, err)
		return
	}
	s.items = items
}

// persist writes the full collection. Failure is non-fatal: memory stays
// authoritative and we warn.
func (s *Store) persist() {
	blob, err := jsonit.Marshal(s.items)
	if err != nil {
		log.Printf("WARNING: Could not serialize %s collection: %v", s.kind, err)
		return
	}
	if err := s.backend.Set(s.storageKey(), blob); err != nil {
		log.Printf("WARNING: Could not persist %s collection: %v. In-memory state is still correct.", s.kind, err)
	}
}

// Items returns a copy of the collection in insertion order (AddedAt
// ascending - the order the user built it in).
func (s *Store) Items() []models.Reference {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Reference, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports how many references are held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Has reports whether an id is already in the collection.
func (s *Store) Has(id models.ProductID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id models.ProductID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends a new reference built from the summary, or merges into the
// existing one (same upsert behavior as the old cart: duplicate ids are
// forbidden, so adding an existing product increments its quantity for the
// cart and is a no-op for the wishlist). Returns the resulting reference.
func (s *Store) Add(summary models.ProductSummary, quantity int) models.Reference {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		quantity = 1
	}
	if s.kind == KindWishlist {
		quantity = 0 // wishlist entries have no quantity
	}

	if i := s.indexOf(summary.ID); i >= 0 {
		if s.kind == KindCart {
			s.items[i].Quantity += quantity
			s.persist()
			s.notifyLocked()
		}
		return s.items[i]
	}

	ref := models.NewReference(summary, quantity)
	s.items = append(s.items, ref)
	s.persist()
	s.notifyLocked()
	return ref
}

// UpdateQuantity sets the quantity of an existing cart reference.
// Quantity 0 is a removal, matching the old PUT-with-zero behavior.
func (s *Store) UpdateQuantity(id models.ProductID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNoSuchReference
	}
	if quantity == 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	} else {
		s.items[i].Quantity = quantity
	}
	s.persist()
	s.notifyLocked()
	return nil
}

// Remove deletes the reference with that id if present. Idempotent: removing
// an absent id is fine and does not rewrite storage.
func (s *Store) Remove(id models.ProductID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persist()
	s.notifyLocked()
}

// Clear empties the collection.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist()
	s.notifyLocked()
}

// Toggle adds the product if absent and removes it if present (wishlist
// heart). The returned action drives UI feedback, so it must always reflect
// what actually happened.
func (s *Store) Toggle(summary models.ProductSummary) ToggleAction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(summary.ID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.persist()
		s.notifyLocked()
		return ToggleRemoved
	}

	ref := models.NewReference(summary, 0)
	s.items = append(s.items, ref)
	s.persist()
	s.notifyLocked()
	return ToggleAdded
}

// notifyLocked publishes the change event. EventBus handlers run synchronously
// on the publishing goroutine while the store lock is held, so subscribers
// must not call back into the store.
func (s *Store) notifyLocked() {
	if s.bus != nil {
		s.bus.Publish(TopicChanged, s.kind)
	}
}
