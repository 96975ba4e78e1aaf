package pricing

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditor_SetItemPriceUpserts(t *testing.T) {
	// End-to-end scenario: one item, price replaced via raw input.
	productID := uuid.New()
	ed := NewEditor(ListHeader{Name: "Wholesale Q1", Currency: "USD", IsActive: true}, []Item{
		{ProductID: productID, ProductName: "HR Coil 2mm", SellingPrice: decimal.NewFromInt(100), MinQuantity: 1},
	})

	ed.SetItemPrice(productID, "HR Coil 2mm", "120")

	items := ed.Items()
	require.Len(t, items, 1)
	assert.Equal(t, productID, items[0].ProductID)
	assert.Equal(t, "120", items[0].SellingPrice.String())
	assert.Equal(t, 1, items[0].MinQuantity)
}

func TestNewCopyEditor(t *testing.T) {
	items := []Item{{ProductID: uuid.New(), ProductName: "MS Plate", SellingPrice: decimal.NewFromInt(50), MinQuantity: 1}}
	ed := NewCopyEditor(ListHeader{Name: "Retail", Currency: "USD", IsDefault: true, IsActive: false}, items)

	assert.Equal(t, "Retail (Copy)", ed.Header.Name)
	assert.False(t, ed.Header.IsDefault)
	assert.True(t, ed.Header.IsActive)
	require.Len(t, ed.Items(), 1)
	assert.Equal(t, "50", ed.Items()[0].SellingPrice.String())
}

func TestEditor_SubmitRequiresName(t *testing.T) {
	ed := NewEditor(ListHeader{Currency: "USD"}, nil)
	err := ed.Submit(func(ListHeader, []Item) error {
		t.Fatal("persist must not run when validation fails")
		return nil
	})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestEditor_SubmitAsNewForcesDefaultOff(t *testing.T) {
	ed := NewEditor(ListHeader{Name: "Retail", Currency: "USD", IsDefault: true}, nil)
	var persisted ListHeader
	require.NoError(t, ed.SubmitAsNew(func(h ListHeader, _ []Item) error {
		persisted = h
		return nil
	}))
	assert.False(t, persisted.IsDefault)
	// The live draft keeps its flag — only the persisted copy is forced off.
	assert.True(t, ed.Header.IsDefault)
}

func TestEditor_DoubleSubmitGuard(t *testing.T) {
	ed := NewEditor(ListHeader{Name: "Wholesale", Currency: "USD"}, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = ed.Submit(func(ListHeader, []Item) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	err := ed.Submit(func(ListHeader, []Item) error { return nil })
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	wg.Wait()

	// After the first submit finishes the session accepts another.
	assert.NoError(t, ed.Submit(func(ListHeader, []Item) error { return nil }))
}

func TestEditor_FailedSubmitReturnsToEditable(t *testing.T) {
	ed := NewEditor(ListHeader{Name: "Wholesale", Currency: "USD"}, nil)
	boom := errors.New("server unavailable")
	assert.ErrorIs(t, ed.Submit(func(ListHeader, []Item) error { return boom }), boom)
	assert.NoError(t, ed.Submit(func(ListHeader, []Item) error { return nil }))
}
