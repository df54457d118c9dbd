package service

import (
	"context"
	"fmt"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/repository"
	"github.com/farmatrack/farmatrack-backend/pkg/cache"
	"github.com/farmatrack/farmatrack-backend/pkg/database"
	"github.com/farmatrack/farmatrack-backend/pkg/logger"
)

// LotDetail is a lot with its products
type LotDetail struct {
	Lote      *repository.Lote       `json:"lote"`
	Productos []*repository.Producto `json:"productos"`
}

// LotList is a page of lots
type LotList struct {
	Lotes []*repository.Lote `json:"lotes"`
	Total int64              `json:"total"`
}

// LotQueryService serves lot reads through the cache. Reception invalidates
// the "lotes" and "productos" entries after every commit, so entries live at
// most one TTL past the last write.
type LotQueryService struct {
	lots     *repository.LotRepository
	products *repository.ProductRepository
	cache    *cache.Cache
	logger   *logger.Logger
}

// NewLotQueryService creates a lot query service
func NewLotQueryService(db *database.DB, c *cache.Cache, log *logger.Logger) *LotQueryService {
	return &LotQueryService{
		lots:     repository.NewLotRepository(db),
		products: repository.NewProductRepository(db),
		cache:    c,
		logger:   log.WithComponent("lot-query"),
	}
}

// List lists lots with read-through caching
func (s *LotQueryService) List(ctx context.Context, filter repository.LotFilter) (*LotList, error) {
	filters := map[string]string{"estado": filter.Estado}
	if filter.IDBodega != nil {
		filters["id_bodega"] = fmt.Sprintf("%d", *filter.IDBodega)
	}
	key := cache.ListKey("lotes", filter.Skip, filter.Limit, filters)

	var cached LotList
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	lotes, total, err := s.lots.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := &LotList{Lotes: lotes, Total: total}
	s.cache.Set(ctx, key, list, cache.DefaultTTL)
	return list, nil
}

// Get fetches a lot with its products, read-through cached
func (s *LotQueryService) Get(ctx context.Context, id int64) (*LotDetail, error) {
	key := cache.ItemKey("lotes", id)

	var cached LotDetail
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	lote, err := s.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	productos, err := s.products.ListByLot(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &LotDetail{Lote: lote, Productos: productos}
	s.cache.Set(ctx, key, detail, cache.DefaultTTL)
	return detail, nil
}
