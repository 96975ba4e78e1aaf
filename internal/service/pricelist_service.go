package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"steelpricing/internal/dto"
	"steelpricing/internal/model"
	"steelpricing/internal/pricing"
	"steelpricing/internal/repository"
	"steelpricing/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrPriceListNotFound is returned by every operation that references a
// price list id with no matching row. Handlers map it to 404.
var ErrPriceListNotFound = errors.New("price list not found")

// PriceListService is the entity manager for price lists: CRUD, item upserts,
// copy-from-source, default seeding, resets, and bulk adjustments. Item
// mutations and their history rows always land in one transaction.
type PriceListService interface {
	List(ctx context.Context, filter dto.PriceListFilter) (*dto.PriceListListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.GetPriceListResponse, error)
	Create(ctx context.Context, req dto.SavePriceListRequest, actor string) (*dto.PriceListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.SavePriceListRequest, actor string) (*dto.PriceListResponse, error)
	// SaveAsNew persists the submitted form as a brand-new list with
	// is_default forced off, regardless of the form state.
	SaveAsNew(ctx context.Context, req dto.SavePriceListRequest, actor string) (*dto.PriceListResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	// CopyFromSource returns an unsaved draft: "{source} (Copy)", never the
	// default, always active, same currency and items, no id.
	CopyFromSource(ctx context.Context, sourceID uuid.UUID) (*dto.PriceListResponse, error)
	// DefaultSeedItems returns the default list's items for seeding a new
	// list. Non-critical: any failure yields an empty seed, never an error.
	DefaultSeedItems(ctx context.Context) *dto.SeedItemsResponse
	SetItemPrice(ctx context.Context, listID, productID uuid.UUID, rawValue, actor string) (*dto.PriceListItemResponse, error)
	ResetToDefaults(ctx context.Context, listID uuid.UUID, actor string) (*dto.GetPriceListResponse, error)
	BulkAdjust(ctx context.Context, listID uuid.UUID, req dto.BulkAdjustRequest, actor string) (*dto.BulkAdjustResponse, error)
}

type priceListService struct {
	repo        repository.PriceListRepository
	productRepo repository.ProductRepository
	historyRepo repository.HistoryRepository
	dispatcher  *worker.Dispatcher
	notifyEmail string
}

func NewPriceListService(
	repo repository.PriceListRepository,
	productRepo repository.ProductRepository,
	historyRepo repository.HistoryRepository,
	dispatcher *worker.Dispatcher,
	notifyEmail string,
) PriceListService {
	return &priceListService{
		repo:        repo,
		productRepo: productRepo,
		historyRepo: historyRepo,
		dispatcher:  dispatcher,
		notifyEmail: notifyEmail,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *priceListService) List(ctx context.Context, filter dto.PriceListFilter) (*dto.PriceListListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	lists, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	summaries := make([]dto.PriceListSummary, 0, len(lists))
	for _, pl := range lists {
		summaries = append(summaries, dto.PriceListSummary{
			ID:        pl.ID.String(),
			Name:      pl.Name,
			Currency:  pl.Currency,
			IsActive:  pl.IsActive,
			IsDefault: pl.IsDefault,
			ItemCount: len(pl.Items),
		})
	}
	return &dto.PriceListListResponse{
		PriceLists: summaries,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *priceListService) Get(ctx context.Context, id uuid.UUID) (*dto.GetPriceListResponse, error) {
	pl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriceListNotFound
		}
		return nil, err
	}
	items := s.mapItems(ctx, pl.Items)
	return &dto.GetPriceListResponse{
		PriceList: headerToResponse(pl),
		Items:     items,
	}, nil
}

// ── Create / Update / SaveAsNew ───────────────────────────────────────────────

func (s *priceListService) Create(ctx context.Context, req dto.SavePriceListRequest, actor string) (*dto.PriceListResponse, error) {
	pl, err := s.buildList(ctx, req)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, pl); err != nil {
			return err
		}
		if pl.IsDefault {
			if err := s.repo.ClearDefaultTx(tx, pl.Currency, pl.ID); err != nil {
				return err
			}
		}
		return s.historyRepo.CreateTx(tx, insertRecords(pl.ID, pl.Items, actor))
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := headerToResponse(pl)
	resp.Items = s.mapItems(ctx, pl.Items)
	return &resp, nil
}

func (s *priceListService) Update(ctx context.Context, id uuid.UUID, req dto.SavePriceListRequest, actor string) (*dto.PriceListResponse, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriceListNotFound
		}
		return nil, err
	}

	updated, err := s.buildList(ctx, req)
	if err != nil {
		return nil, err
	}
	updated.ID = id

	changes := diffItems(id, existing.Items, updated.Items, actor)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateHeaderTx(tx, updated); err != nil {
			return err
		}
		if updated.IsDefault {
			if err := s.repo.ClearDefaultTx(tx, updated.Currency, id); err != nil {
				return err
			}
		}
		if err := s.repo.ReplaceItemsTx(tx, id, updated.Items); err != nil {
			return err
		}
		return s.historyRepo.CreateTx(tx, changes)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := headerToResponse(updated)
	resp.Items = s.mapItems(ctx, updated.Items)
	return &resp, nil
}

func (s *priceListService) SaveAsNew(ctx context.Context, req dto.SavePriceListRequest, actor string) (*dto.PriceListResponse, error) {
	req.IsDefault = false
	return s.Create(ctx, req, actor)
}

func (s *priceListService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPriceListNotFound
		}
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

// ── Copy / Seed ───────────────────────────────────────────────────────────────

func (s *priceListService) CopyFromSource(ctx context.Context, sourceID uuid.UUID) (*dto.PriceListResponse, error) {
	source, err := s.repo.FindByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriceListNotFound
		}
		return nil, err
	}

	ed := pricing.NewCopyEditor(headerToPricing(source), itemsToPricing(source.Items))

	resp := dto.PriceListResponse{
		Name:          ed.Header.Name,
		Description:   source.Description,
		Currency:      ed.Header.Currency,
		IsActive:      ed.Header.IsActive,
		IsDefault:     ed.Header.IsDefault,
		EffectiveFrom: formatDate(ed.Header.EffectiveFrom),
		EffectiveTo:   formatDate(ed.Header.EffectiveTo),
		Metadata:      map[string]interface{}(source.Metadata),
	}
	resp.Items = s.mapItems(ctx, pricingToItems(ed.Items()))
	return &resp, nil
}

func (s *priceListService) DefaultSeedItems(ctx context.Context) *dto.SeedItemsResponse {
	def, err := s.repo.FindDefault(ctx, "")
	if err != nil {
		// Non-critical: a brand-new list simply starts empty.
		log.Debug().Err(err).Msg("default price list seed unavailable")
		return &dto.SeedItemsResponse{Items: []dto.PriceListItemResponse{}}
	}
	return &dto.SeedItemsResponse{Items: s.mapItems(ctx, def.Items)}
}

// ── Item operations ───────────────────────────────────────────────────────────

func (s *priceListService) SetItemPrice(ctx context.Context, listID, productID uuid.UUID, rawValue, actor string) (*dto.PriceListItemResponse, error) {
	pl, err := s.repo.FindByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriceListNotFound
		}
		return nil, err
	}

	productName := ""
	existed := false
	var oldPrice decimal.Decimal
	for _, it := range pl.Items {
		if it.ProductID == productID {
			existed = true
			oldPrice = it.SellingPrice
			productName = it.ProductName
			break
		}
	}
	if !existed {
		p, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		productName = p.Name
	}

	items := pricing.UpsertItemPrice(itemsToPricing(pl.Items), productID, productName, rawValue)
	newPrice := items[len(items)-1].SellingPrice
	if existed {
		for _, it := range items {
			if it.ProductID == productID {
				newPrice = it.SellingPrice
				break
			}
		}
	}

	var records []model.PriceChangeRecord
	switch {
	case !existed:
		records = append(records, changeRecord(listID, productID, productName, pricing.ChangeInsert, nil, &newPrice, actor))
	case !oldPrice.Equal(newPrice):
		records = append(records, changeRecord(listID, productID, productName, pricing.ChangeUpdate, &oldPrice, &newPrice, actor))
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.ReplaceItemsTx(tx, listID, pricingToItems(items)); err != nil {
			return err
		}
		return s.historyRepo.CreateTx(tx, records)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := s.mapItems(ctx, []model.PriceListItem{{
		ProductID:    productID,
		ProductName:  productName,
		SellingPrice: newPrice,
		MinQuantity:  minQuantityFor(items, productID),
	}})
	return &resp[0], nil
}

func (s *priceListService) ResetToDefaults(ctx context.Context, listID uuid.UUID, actor string) (*dto.GetPriceListResponse, error) {
	pl, err := s.repo.FindByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriceListNotFound
		}
		return nil, err
	}

	catalog, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	seed := make([]pricing.CatalogProduct, 0, len(catalog))
	for _, p := range catalog {
		seed = append(seed, pricing.CatalogProduct{ID: p.ID, Name: p.Name, SellingPrice: p.SellingPrice})
	}
	items := pricingToItems(pricing.ResetToDefaults(seed))
	changes := diffItems(listID, pl.Items, items, actor)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.ReplaceItemsTx(tx, listID, items); err != nil {
			return err
		}
		return s.historyRepo.CreateTx(tx, changes)
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.GetPriceListResponse{
		PriceList: headerToResponse(pl),
		Items:     s.mapItems(ctx, items),
	}, nil
}

func (s *priceListService) BulkAdjust(ctx context.Context, listID uuid.UUID, req dto.BulkAdjustRequest, actor string) (*dto.BulkAdjustResponse, error) {
	pl, err := s.repo.FindByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriceListNotFound
		}
		return nil, err
	}

	adj := pricing.Adjustment{Type: pricing.AdjustmentType(req.Type), Percentage: req.Percentage}
	before := itemsToPricing(pl.Items)
	after := pricing.ApplyBulkAdjustment(before, adj)

	var records []model.PriceChangeRecord
	adjusted := 0
	for i := range after {
		if before[i].SellingPrice.Equal(after[i].SellingPrice) {
			continue
		}
		adjusted++
		oldP, newP := before[i].SellingPrice, after[i].SellingPrice
		records = append(records, changeRecord(listID, after[i].ProductID, after[i].ProductName, pricing.ChangeUpdate, &oldP, &newP, actor))
	}

	items := pricingToItems(after)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.ReplaceItemsTx(tx, listID, items); err != nil {
			return err
		}
		return s.historyRepo.CreateTx(tx, records)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Digest notification is best-effort — a failed enqueue never fails the
	// adjustment itself.
	if s.dispatcher != nil && s.notifyEmail != "" && adjusted > 0 {
		_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
			ToEmail: s.notifyEmail,
			Subject: fmt.Sprintf("Price list %q: %s of %s%% applied to %d items", pl.Name, req.Type, req.Percentage, adjusted),
			Body:    fmt.Sprintf("Bulk %s of %s%% applied by %s at %s.", req.Type, req.Percentage, actor, time.Now().UTC().Format(time.RFC3339)),
		})
	}

	return &dto.BulkAdjustResponse{
		Adjusted: adjusted,
		Items:    s.mapItems(ctx, items),
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *priceListService) buildList(ctx context.Context, req dto.SavePriceListRequest) (*model.PriceList, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, pricing.ErrNameRequired
	}

	from, err := parseDate(req.EffectiveFrom)
	if err != nil {
		return nil, errors.New("effective_from must be yyyy-MM-dd")
	}
	to, err := parseDate(req.EffectiveTo)
	if err != nil {
		return nil, errors.New("effective_to must be yyyy-MM-dd")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	pl := &model.PriceList{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Currency:      strings.ToUpper(req.Currency),
		IsActive:      isActive,
		IsDefault:     req.IsDefault,
		EffectiveFrom: from,
		EffectiveTo:   to,
		Metadata:      datatypes.JSONMap(req.Metadata),
	}

	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, payload := range req.Items {
		pid, err := uuid.Parse(payload.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id %q", payload.ProductID)
		}
		if seen[pid] {
			return nil, fmt.Errorf("duplicate item for product %s", pid)
		}
		seen[pid] = true

		name := ""
		if p, err := s.productRepo.FindByID(ctx, pid); err == nil {
			name = p.Name
		}
		minQty := payload.MinQuantity
		if minQty < 1 {
			minQty = 1
		}
		pl.Items = append(pl.Items, model.PriceListItem{
			ProductID:    pid,
			ProductName:  name,
			SellingPrice: payload.SellingPrice,
			MinQuantity:  minQty,
		})
	}
	return pl, nil
}

// mapItems converts items to responses, deriving margin from catalog cost
// prices. A failed catalog read degrades to responses without margins.
func (s *priceListService) mapItems(ctx context.Context, items []model.PriceListItem) []dto.PriceListItemResponse {
	costs := make(map[uuid.UUID]decimal.Decimal)
	if products, err := s.productRepo.ListActive(ctx); err == nil {
		for _, p := range products {
			costs[p.ID] = p.CostPrice
		}
	}

	out := make([]dto.PriceListItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.PriceListItemResponse{
			ProductID:    it.ProductID.String(),
			ProductName:  it.ProductName,
			SellingPrice: it.SellingPrice,
			MinQuantity:  it.MinQuantity,
			Margin:       pricing.CalculateMargin(it.SellingPrice, costs[it.ProductID]),
		})
	}
	return out
}

func headerToResponse(pl *model.PriceList) dto.PriceListResponse {
	resp := dto.PriceListResponse{
		Name:          pl.Name,
		Description:   pl.Description,
		Currency:      pl.Currency,
		IsActive:      pl.IsActive,
		IsDefault:     pl.IsDefault,
		EffectiveFrom: formatDate(pl.EffectiveFrom),
		EffectiveTo:   formatDate(pl.EffectiveTo),
		Metadata:      map[string]interface{}(pl.Metadata),
	}
	if pl.ID != uuid.Nil {
		resp.ID = pl.ID.String()
	}
	return resp
}

func headerToPricing(pl *model.PriceList) pricing.ListHeader {
	desc := ""
	if pl.Description != nil {
		desc = *pl.Description
	}
	return pricing.ListHeader{
		Name:          pl.Name,
		Description:   desc,
		Currency:      pl.Currency,
		IsActive:      pl.IsActive,
		IsDefault:     pl.IsDefault,
		EffectiveFrom: pl.EffectiveFrom,
		EffectiveTo:   pl.EffectiveTo,
	}
}

func itemsToPricing(items []model.PriceListItem) []pricing.Item {
	out := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.Item{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			SellingPrice: it.SellingPrice,
			MinQuantity:  it.MinQuantity,
		})
	}
	return out
}

func pricingToItems(items []pricing.Item) []model.PriceListItem {
	out := make([]model.PriceListItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.PriceListItem{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			SellingPrice: it.SellingPrice,
			MinQuantity:  it.MinQuantity,
		})
	}
	return out
}

func minQuantityFor(items []pricing.Item, productID uuid.UUID) int {
	for _, it := range items {
		if it.ProductID == productID {
			return it.MinQuantity
		}
	}
	return 1
}

func changeRecord(listID, productID uuid.UUID, name string, ct pricing.ChangeType, oldP, newP *decimal.Decimal, actor string) model.PriceChangeRecord {
	if actor == "" {
		actor = "System"
	}
	return model.PriceChangeRecord{
		PriceListID:     listID,
		ProductID:       productID,
		ProductName:     name,
		ChangeType:      string(ct),
		OldSellingPrice: oldP,
		NewSellingPrice: newP,
		ChangedBy:       actor,
		ChangedAt:       time.Now().UTC(),
	}
}

func insertRecords(listID uuid.UUID, items []model.PriceListItem, actor string) []model.PriceChangeRecord {
	records := make([]model.PriceChangeRecord, 0, len(items))
	for _, it := range items {
		price := it.SellingPrice
		records = append(records, changeRecord(listID, it.ProductID, it.ProductName, pricing.ChangeInsert, nil, &price, actor))
	}
	return records
}

// diffItems classifies the transition between two item collections into
// INSERT/UPDATE/DELETE history rows. Unchanged prices produce no row.
func diffItems(listID uuid.UUID, before, after []model.PriceListItem, actor string) []model.PriceChangeRecord {
	old := make(map[uuid.UUID]model.PriceListItem, len(before))
	for _, it := range before {
		old[it.ProductID] = it
	}

	var records []model.PriceChangeRecord
	seen := make(map[uuid.UUID]bool, len(after))
	for _, it := range after {
		seen[it.ProductID] = true
		prev, ok := old[it.ProductID]
		switch {
		case !ok:
			price := it.SellingPrice
			records = append(records, changeRecord(listID, it.ProductID, it.ProductName, pricing.ChangeInsert, nil, &price, actor))
		case !prev.SellingPrice.Equal(it.SellingPrice):
			oldP, newP := prev.SellingPrice, it.SellingPrice
			records = append(records, changeRecord(listID, it.ProductID, it.ProductName, pricing.ChangeUpdate, &oldP, &newP, actor))
		}
	}
	for _, it := range before {
		if !seen[it.ProductID] {
			price := it.SellingPrice
			records = append(records, changeRecord(listID, it.ProductID, it.ProductName, pricing.ChangeDelete, &price, nil, actor))
		}
	}
	return records
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
