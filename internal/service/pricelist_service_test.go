package service_test

import (
	"context"
	"testing"

	"steelpricing/internal/dto"
	"steelpricing/internal/model"
	"steelpricing/internal/pricing"
	"steelpricing/internal/repository"
	"steelpricing/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubPriceListRepo is an in-memory PriceListRepository for testing.
type stubPriceListRepo struct {
	lists             map[uuid.UUID]*model.PriceList
	defaultID         uuid.UUID
	defaultErr        error
	clearDefaultCalls []string // "<currency>:<exceptID>"
}

func newStubPriceListRepo() *stubPriceListRepo {
	return &stubPriceListRepo{lists: make(map[uuid.UUID]*model.PriceList)}
}

func (r *stubPriceListRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PriceList, error) {
	pl, ok := r.lists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pl, nil
}

func (r *stubPriceListRepo) List(_ context.Context, _ dto.PriceListFilter) ([]model.PriceList, int64, error) {
	out := make([]model.PriceList, 0, len(r.lists))
	for _, pl := range r.lists {
		out = append(out, *pl)
	}
	return out, int64(len(out)), nil
}

func (r *stubPriceListRepo) FindDefault(_ context.Context, _ string) (*model.PriceList, error) {
	if r.defaultErr != nil {
		return nil, r.defaultErr
	}
	pl, ok := r.lists[r.defaultID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pl, nil
}

func (r *stubPriceListRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	pl, ok := r.lists[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	pl.IsActive = false
	pl.IsDefault = false
	return nil
}

func (r *stubPriceListRepo) CreateTx(_ *gorm.DB, pl *model.PriceList) error {
	if pl.ID == uuid.Nil {
		pl.ID = uuid.New()
	}
	r.lists[pl.ID] = pl
	return nil
}

func (r *stubPriceListRepo) UpdateHeaderTx(_ *gorm.DB, pl *model.PriceList) error {
	existing, ok := r.lists[pl.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	items := existing.Items
	*existing = *pl
	existing.Items = items
	return nil
}

func (r *stubPriceListRepo) ReplaceItemsTx(_ *gorm.DB, listID uuid.UUID, items []model.PriceListItem) error {
	pl, ok := r.lists[listID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	pl.Items = items
	return nil
}

func (r *stubPriceListRepo) ClearDefaultTx(_ *gorm.DB, currency string, exceptID uuid.UUID) error {
	r.clearDefaultCalls = append(r.clearDefaultCalls, currency+":"+exceptID.String())
	for id, pl := range r.lists {
		if id != exceptID && pl.Currency == currency {
			pl.IsDefault = false
		}
	}
	return nil
}

func (r *stubPriceListRepo) DB() *gorm.DB { return nil }

var _ repository.PriceListRepository = (*stubPriceListRepo)(nil)

// stubProductRepo serves a fixed catalog.
type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out, _ := r.ListActive(context.Background())
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListActive(_ context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubHistoryRepo captures written change records for assertion.
type stubHistoryRepo struct {
	records []model.PriceChangeRecord
}

func (r *stubHistoryRepo) CreateTx(_ *gorm.DB, records []model.PriceChangeRecord) error {
	for i := range records {
		if records[i].ID == uuid.Nil {
			records[i].ID = uuid.New()
		}
	}
	r.records = append(r.records, records...)
	return nil
}

func (r *stubHistoryRepo) ListByPriceList(_ context.Context, listID uuid.UUID, filter dto.HistoryFilter) ([]model.PriceChangeRecord, int64, error) {
	var out []model.PriceChangeRecord
	for _, rec := range r.records {
		if rec.PriceListID == listID {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubHistoryRepo) ListAllByPriceList(_ context.Context, listID uuid.UUID) ([]model.PriceChangeRecord, error) {
	rows, _, err := r.ListByPriceList(context.Background(), listID, dto.HistoryFilter{})
	return rows, err
}

var _ repository.HistoryRepository = (*stubHistoryRepo)(nil)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(t *testing.T) (service.PriceListService, *stubPriceListRepo, *stubProductRepo, *stubHistoryRepo) {
	t.Helper()
	listRepo := newStubPriceListRepo()
	productRepo := newStubProductRepo()
	historyRepo := &stubHistoryRepo{}
	svc := service.NewPriceListService(listRepo, productRepo, historyRepo, nil, "")
	return svc, listRepo, productRepo, historyRepo
}

func seedProduct(repo *stubProductRepo, name string, cost, selling string) *model.Product {
	p := &model.Product{
		ID:           uuid.New(),
		Code:         name,
		Name:         name,
		Category:     "BAR",
		PricingBasis: "PER_KG",
		CostPrice:    dec(cost),
		SellingPrice: dec(selling),
		Active:       true,
	}
	repo.products[p.ID] = p
	return p
}

func seedList(repo *stubPriceListRepo, name string, items ...model.PriceListItem) *model.PriceList {
	pl := &model.PriceList{
		ID:       uuid.New(),
		Name:     name,
		Currency: "USD",
		IsActive: true,
		Items:    items,
	}
	repo.lists[pl.ID] = pl
	return pl
}

// ── Create / Update ───────────────────────────────────────────────────────────

func TestCreate_BlankNameRejected(t *testing.T) {
	svc, _, _, historyRepo := newService(t)

	_, err := svc.Create(context.Background(), dto.SavePriceListRequest{
		Name:     "   ",
		Currency: "USD",
	}, "alice")

	require.ErrorIs(t, err, pricing.ErrNameRequired)
	assert.Empty(t, historyRepo.records)
}

func TestCreate_RecordsInsertHistoryAndClearsDefault(t *testing.T) {
	svc, listRepo, productRepo, historyRepo := newService(t)
	tmt := seedProduct(productRepo, "TMT Bar 12mm", "51000", "55200")
	coil := seedProduct(productRepo, "HR Coil 2.0mm", "48500", "52400")

	old := seedList(listRepo, "Old Default")
	old.IsDefault = true

	resp, err := svc.Create(context.Background(), dto.SavePriceListRequest{
		Name:      "Wholesale Q1",
		Currency:  "usd",
		IsDefault: true,
		Items: []dto.PriceListItemPayload{
			{ProductID: tmt.ID.String(), SellingPrice: dec("55000"), MinQuantity: 5},
			{ProductID: coil.ID.String(), SellingPrice: dec("52000")},
		},
	}, "alice")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "USD", resp.Currency)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "TMT Bar 12mm", resp.Items[0].ProductName)
	assert.Equal(t, 5, resp.Items[0].MinQuantity)
	assert.Equal(t, 1, resp.Items[1].MinQuantity) // defaulted

	// One INSERT row per item, attributed to the actor
	require.Len(t, historyRepo.records, 2)
	for _, rec := range historyRepo.records {
		assert.Equal(t, string(pricing.ChangeInsert), rec.ChangeType)
		assert.Nil(t, rec.OldSellingPrice)
		assert.NotNil(t, rec.NewSellingPrice)
		assert.Equal(t, "alice", rec.ChangedBy)
	}

	// The previous default lost its flag
	require.Len(t, listRepo.clearDefaultCalls, 1)
	assert.False(t, old.IsDefault)
}

func TestCreate_DuplicateProductRejected(t *testing.T) {
	svc, _, productRepo, _ := newService(t)
	p := seedProduct(productRepo, "MS Angle", "58", "64.5")

	_, err := svc.Create(context.Background(), dto.SavePriceListRequest{
		Name:     "Retail",
		Currency: "USD",
		Items: []dto.PriceListItemPayload{
			{ProductID: p.ID.String(), SellingPrice: dec("64.5")},
			{ProductID: p.ID.String(), SellingPrice: dec("66")},
		},
	}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate item")
}

func TestUpdate_DiffProducesInsertUpdateDelete(t *testing.T) {
	svc, listRepo, productRepo, historyRepo := newService(t)
	kept := seedProduct(productRepo, "Kept", "90", "100")
	removed := seedProduct(productRepo, "Removed", "45", "50")
	added := seedProduct(productRepo, "Added", "180", "200")

	pl := seedList(listRepo, "Retail",
		model.PriceListItem{ProductID: kept.ID, ProductName: "Kept", SellingPrice: dec("100"), MinQuantity: 1},
		model.PriceListItem{ProductID: removed.ID, ProductName: "Removed", SellingPrice: dec("50"), MinQuantity: 1},
	)

	_, err := svc.Update(context.Background(), pl.ID, dto.SavePriceListRequest{
		Name:     "Retail",
		Currency: "USD",
		Items: []dto.PriceListItemPayload{
			{ProductID: kept.ID.String(), SellingPrice: dec("120")}, // changed
			{ProductID: added.ID.String(), SellingPrice: dec("200")}, // new
		},
	}, "bob")
	require.NoError(t, err)

	byType := map[string]model.PriceChangeRecord{}
	for _, rec := range historyRepo.records {
		byType[rec.ChangeType] = rec
	}
	require.Len(t, historyRepo.records, 3)

	upd := byType[string(pricing.ChangeUpdate)]
	assert.Equal(t, "Kept", upd.ProductName)
	assert.True(t, upd.OldSellingPrice.Equal(dec("100")))
	assert.True(t, upd.NewSellingPrice.Equal(dec("120")))

	ins := byType[string(pricing.ChangeInsert)]
	assert.Equal(t, "Added", ins.ProductName)
	assert.Nil(t, ins.OldSellingPrice)

	del := byType[string(pricing.ChangeDelete)]
	assert.Equal(t, "Removed", del.ProductName)
	assert.Nil(t, del.NewSellingPrice)
}

func TestSaveAsNew_ForcesDefaultOff(t *testing.T) {
	svc, listRepo, productRepo, _ := newService(t)
	p := seedProduct(productRepo, "Pipe", "145", "162")

	resp, err := svc.SaveAsNew(context.Background(), dto.SavePriceListRequest{
		Name:      "Cloned",
		Currency:  "USD",
		IsDefault: true, // must be ignored
		Items:     []dto.PriceListItemPayload{{ProductID: p.ID.String(), SellingPrice: dec("162")}},
	}, "")
	require.NoError(t, err)

	assert.False(t, resp.IsDefault)
	saved := listRepo.lists[uuid.MustParse(resp.ID)]
	assert.False(t, saved.IsDefault)
	assert.Empty(t, listRepo.clearDefaultCalls)
}

// ── Copy / Seed ───────────────────────────────────────────────────────────────

func TestCopyFromSource_ReturnsUnsavedDraft(t *testing.T) {
	svc, listRepo, productRepo, _ := newService(t)
	p := seedProduct(productRepo, "Wire", "62", "71")

	src := seedList(listRepo, "Retail",
		model.PriceListItem{ProductID: p.ID, ProductName: "Wire", SellingPrice: dec("71"), MinQuantity: 10},
	)
	src.IsDefault = true

	draft, err := svc.CopyFromSource(context.Background(), src.ID)
	require.NoError(t, err)

	assert.Empty(t, draft.ID) // nothing persisted
	assert.Equal(t, "Retail (Copy)", draft.Name)
	assert.False(t, draft.IsDefault)
	assert.True(t, draft.IsActive)
	assert.Equal(t, "USD", draft.Currency)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, 10, draft.Items[0].MinQuantity)

	// Source untouched, nothing new stored
	assert.Len(t, listRepo.lists, 1)
	assert.Equal(t, "Retail", listRepo.lists[src.ID].Name)
}

func TestDefaultSeedItems_FailureYieldsEmptySeed(t *testing.T) {
	svc, listRepo, _, _ := newService(t)
	listRepo.defaultErr = gorm.ErrRecordNotFound

	seed := svc.DefaultSeedItems(context.Background())
	require.NotNil(t, seed)
	assert.Empty(t, seed.Items)
}

func TestDefaultSeedItems_ReturnsDefaultListItems(t *testing.T) {
	svc, listRepo, productRepo, _ := newService(t)
	p := seedProduct(productRepo, "Sheet", "780", "865")

	def := seedList(listRepo, "Standard",
		model.PriceListItem{ProductID: p.ID, ProductName: "Sheet", SellingPrice: dec("865"), MinQuantity: 1},
	)
	def.IsDefault = true
	listRepo.defaultID = def.ID

	seed := svc.DefaultSeedItems(context.Background())
	require.Len(t, seed.Items, 1)
	assert.Equal(t, "Sheet", seed.Items[0].ProductName)
}

// ── SetItemPrice ──────────────────────────────────────────────────────────────

func TestSetItemPrice_ParsesRawValueAndRecordsUpdate(t *testing.T) {
	svc, listRepo, productRepo, historyRepo := newService(t)
	p := seedProduct(productRepo, "TMT Bar 8mm", "52000", "56500")

	pl := seedList(listRepo, "Wholesale Q1",
		model.PriceListItem{ProductID: p.ID, ProductName: "TMT Bar 8mm", SellingPrice: dec("100"), MinQuantity: 1},
	)

	item, err := svc.SetItemPrice(context.Background(), pl.ID, p.ID, "120abc", "carol")
	require.NoError(t, err)
	assert.True(t, item.SellingPrice.Equal(dec("120")))

	require.Len(t, historyRepo.records, 1)
	rec := historyRepo.records[0]
	assert.Equal(t, string(pricing.ChangeUpdate), rec.ChangeType)
	assert.True(t, rec.OldSellingPrice.Equal(dec("100")))
	assert.True(t, rec.NewSellingPrice.Equal(dec("120")))
	assert.Equal(t, "carol", rec.ChangedBy)
}

func TestSetItemPrice_GarbageBecomesZero(t *testing.T) {
	svc, listRepo, productRepo, _ := newService(t)
	p := seedProduct(productRepo, "Angle", "58", "64.5")
	pl := seedList(listRepo, "Retail",
		model.PriceListItem{ProductID: p.ID, ProductName: "Angle", SellingPrice: dec("64.5"), MinQuantity: 1},
	)

	item, err := svc.SetItemPrice(context.Background(), pl.ID, p.ID, "abc", "")
	require.NoError(t, err)
	assert.True(t, item.SellingPrice.IsZero())
}

func TestSetItemPrice_NewProductAppendedWithMinQuantityOne(t *testing.T) {
	svc, listRepo, productRepo, historyRepo := newService(t)
	existing := seedProduct(productRepo, "Coil", "48500", "52400")
	newcomer := seedProduct(productRepo, "Channel", "500", "598")

	pl := seedList(listRepo, "Retail",
		model.PriceListItem{ProductID: existing.ID, ProductName: "Coil", SellingPrice: dec("52400"), MinQuantity: 2},
	)

	item, err := svc.SetItemPrice(context.Background(), pl.ID, newcomer.ID, "598", "")
	require.NoError(t, err)
	assert.Equal(t, "Channel", item.ProductName)
	assert.Equal(t, 1, item.MinQuantity)

	// Appended at the end, existing order preserved
	require.Len(t, pl.Items, 2)
	assert.Equal(t, existing.ID, pl.Items[0].ProductID)
	assert.Equal(t, newcomer.ID, pl.Items[1].ProductID)

	require.Len(t, historyRepo.records, 1)
	assert.Equal(t, string(pricing.ChangeInsert), historyRepo.records[0].ChangeType)
}

func TestSetItemPrice_UnchangedPriceRecordsNothing(t *testing.T) {
	svc, listRepo, productRepo, historyRepo := newService(t)
	p := seedProduct(productRepo, "Pipe", "145", "162")
	pl := seedList(listRepo, "Retail",
		model.PriceListItem{ProductID: p.ID, ProductName: "Pipe", SellingPrice: dec("162"), MinQuantity: 1},
	)

	_, err := svc.SetItemPrice(context.Background(), pl.ID, p.ID, "162", "")
	require.NoError(t, err)
	assert.Empty(t, historyRepo.records)
}

func TestSetItemPrice_UnknownProductRejected(t *testing.T) {
	svc, listRepo, _, _ := newService(t)
	pl := seedList(listRepo, "Retail")

	_, err := svc.SetItemPrice(context.Background(), pl.ID, uuid.New(), "100", "")
	require.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestMissingListYieldsSentinel(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()
	missing := uuid.New()

	_, err := svc.Get(ctx, missing)
	assert.ErrorIs(t, err, service.ErrPriceListNotFound)

	_, err = svc.Update(ctx, missing, dto.SavePriceListRequest{Name: "X", Currency: "USD"}, "")
	assert.ErrorIs(t, err, service.ErrPriceListNotFound)

	_, err = svc.CopyFromSource(ctx, missing)
	assert.ErrorIs(t, err, service.ErrPriceListNotFound)

	_, err = svc.SetItemPrice(ctx, missing, uuid.New(), "100", "")
	assert.ErrorIs(t, err, service.ErrPriceListNotFound)

	_, err = svc.ResetToDefaults(ctx, missing, "")
	assert.ErrorIs(t, err, service.ErrPriceListNotFound)

	_, err = svc.BulkAdjust(ctx, missing, dto.BulkAdjustRequest{Type: "increase", Percentage: dec("10")}, "")
	assert.ErrorIs(t, err, service.ErrPriceListNotFound)

	assert.ErrorIs(t, svc.Deactivate(ctx, missing), service.ErrPriceListNotFound)
}

// ── ResetToDefaults / BulkAdjust ──────────────────────────────────────────────

func TestResetToDefaults_OverwritesFromCatalog(t *testing.T) {
	svc, listRepo, productRepo, historyRepo := newService(t)
	a := seedProduct(productRepo, "A", "90", "100")
	seedProduct(productRepo, "B", "180", "200")

	pl := seedList(listRepo, "Custom",
		model.PriceListItem{ProductID: a.ID, ProductName: "A", SellingPrice: dec("95"), MinQuantity: 1},
	)

	resp, err := svc.ResetToDefaults(context.Background(), pl.ID, "dave")
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	prices := map[string]decimal.Decimal{}
	for _, it := range resp.Items {
		prices[it.ProductName] = it.SellingPrice
	}
	assert.True(t, prices["A"].Equal(dec("100"))) // 95 → catalog default
	assert.True(t, prices["B"].Equal(dec("200"))) // newly added

	// One UPDATE (A: 95→100) and one INSERT (B)
	types := map[string]int{}
	for _, rec := range historyRepo.records {
		types[rec.ChangeType]++
	}
	assert.Equal(t, 1, types[string(pricing.ChangeUpdate)])
	assert.Equal(t, 1, types[string(pricing.ChangeInsert)])
}

func TestBulkAdjust_IncreaseRoundsHalfAwayFromZero(t *testing.T) {
	svc, listRepo, productRepo, historyRepo := newService(t)
	a := seedProduct(productRepo, "A", "90", "100")
	b := seedProduct(productRepo, "B", "9", "10.05")

	pl := seedList(listRepo, "Retail",
		model.PriceListItem{ProductID: a.ID, ProductName: "A", SellingPrice: dec("100"), MinQuantity: 1},
		model.PriceListItem{ProductID: b.ID, ProductName: "B", SellingPrice: dec("10.05"), MinQuantity: 1},
	)

	resp, err := svc.BulkAdjust(context.Background(), pl.ID, dto.BulkAdjustRequest{
		Type:       "increase",
		Percentage: dec("10"),
	}, "erin")
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Adjusted)
	assert.True(t, resp.Items[0].SellingPrice.Equal(dec("110")))
	// 10.05 * 1.10 = 11.055 → 11.06 (half away from zero)
	assert.True(t, resp.Items[1].SellingPrice.Equal(dec("11.06")))

	require.Len(t, historyRepo.records, 2)
	for _, rec := range historyRepo.records {
		assert.Equal(t, string(pricing.ChangeUpdate), rec.ChangeType)
		assert.Equal(t, "erin", rec.ChangedBy)
	}
}

func TestBulkAdjust_ZeroPercentIsNoOp(t *testing.T) {
	svc, listRepo, productRepo, historyRepo := newService(t)
	p := seedProduct(productRepo, "A", "90", "100")
	pl := seedList(listRepo, "Retail",
		model.PriceListItem{ProductID: p.ID, ProductName: "A", SellingPrice: dec("100"), MinQuantity: 1},
	)

	resp, err := svc.BulkAdjust(context.Background(), pl.ID, dto.BulkAdjustRequest{
		Type:       "decrease",
		Percentage: decimal.Zero,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Adjusted)
	assert.Empty(t, historyRepo.records)
}

// ── Margins on responses ──────────────────────────────────────────────────────

func TestGet_DerivesMarginsFromCatalogCosts(t *testing.T) {
	svc, listRepo, productRepo, _ := newService(t)
	p := seedProduct(productRepo, "A", "80", "100")
	free := seedProduct(productRepo, "Giveaway", "10", "0")

	pl := seedList(listRepo, "Retail",
		model.PriceListItem{ProductID: p.ID, ProductName: "A", SellingPrice: dec("100"), MinQuantity: 1},
		model.PriceListItem{ProductID: free.ID, ProductName: "Giveaway", SellingPrice: decimal.Zero, MinQuantity: 1},
	)

	resp, err := svc.Get(context.Background(), pl.ID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	require.NotNil(t, resp.Items[0].Margin)
	assert.Equal(t, "20.0", *resp.Items[0].Margin)
	assert.Nil(t, resp.Items[1].Margin) // zero price → no meaningful margin
}
