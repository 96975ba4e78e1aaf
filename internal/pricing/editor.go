package pricing

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrNameRequired blocks submission of an unnamed price list. It never
// reaches the network — callers surface it inline.
var ErrNameRequired = errors.New("Price list name is required")

// ErrSubmitInFlight rejects a second submit while one is still running.
var ErrSubmitInFlight = errors.New("a submit is already in progress")

// ListHeader carries the editable header fields of a price list draft.
type ListHeader struct {
	Name          string
	Description   string
	Currency      string
	IsActive      bool
	IsDefault     bool
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
}

// Editor owns the in-memory state of one price-list edit session. A session
// owns its item collection exclusively until submit; the submitting flag
// guards against double submission, mirroring the
// Loading → Ready → Submitting → (done | back to Ready) lifecycle.
type Editor struct {
	Header ListHeader
	items  []Item

	submitting atomic.Bool
}

// NewEditor starts an edit session over a header and item snapshot.
// The items are copied; later mutations of the caller's slice are invisible.
func NewEditor(header ListHeader, items []Item) *Editor {
	snapshot := make([]Item, len(items))
	copy(snapshot, items)
	return &Editor{Header: header, items: snapshot}
}

// NewCopyEditor starts a session seeded from an existing list: name gets a
// " (Copy)" suffix, the copy is never the default, and it starts active.
func NewCopyEditor(source ListHeader, items []Item) *Editor {
	source.Name += " (Copy)"
	source.IsDefault = false
	source.IsActive = true
	return NewEditor(source, items)
}

// Items returns a copy of the current item collection.
func (e *Editor) Items() []Item {
	out := make([]Item, len(e.items))
	copy(out, e.items)
	return out
}

// SetItemPrice upserts the price for a product from raw user input.
func (e *Editor) SetItemPrice(productID uuid.UUID, productName, rawValue string) {
	e.items = UpsertItemPrice(e.items, productID, productName, rawValue)
}

// ResetToDefaults overwrites the whole item collection from the catalog.
func (e *Editor) ResetToDefaults(catalog []CatalogProduct) {
	e.items = ResetToDefaults(catalog)
}

// ApplyBulkAdjustment adjusts every item price in place.
func (e *Editor) ApplyBulkAdjustment(adj Adjustment) {
	e.items = ApplyBulkAdjustment(e.items, adj)
}

// Submit validates the draft and runs persist exactly once at a time.
// A concurrent call while persist is running fails with ErrSubmitInFlight;
// a failed persist returns the session to an editable state.
func (e *Editor) Submit(persist func(ListHeader, []Item) error) error {
	if e.Header.Name == "" {
		return ErrNameRequired
	}
	if !e.submitting.CompareAndSwap(false, true) {
		return ErrSubmitInFlight
	}
	defer e.submitting.Store(false)
	return persist(e.Header, e.Items())
}

// SubmitAsNew behaves like Submit but forces IsDefault off, for the
// "Save As New" affordance of an edit session.
func (e *Editor) SubmitAsNew(persist func(ListHeader, []Item) error) error {
	header := e.Header
	header.IsDefault = false
	if header.Name == "" {
		return ErrNameRequired
	}
	if !e.submitting.CompareAndSwap(false, true) {
		return ErrSubmitInFlight
	}
	defer e.submitting.Store(false)
	return persist(header, e.Items())
}
