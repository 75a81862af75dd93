package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"promo-engine/internal/domain/entity"
	"promo-engine/internal/domain/value"
	"promo-engine/internal/infrastructure/catalog"
	"promo-engine/pkg/httpx/reply"
	"promo-engine/pkg/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	storefrontCacheKey = "storefront:deals"
	storefrontCacheTTL = time.Minute
)

type websiteService interface {
	WebsiteDeals(ctx context.Context) ([]entity.Deal, error)
}

type catalogClient interface {
	ItemsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Item, error)
	CategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// StorefrontServer serves the public deals listing. The rendered response
// is cached in Redis, one instance rebuilding it serves them all.
type StorefrontServer struct {
	websiteService websiteService
	catalogClient  catalogClient
	redisClient    *redis.Client
}

func NewStorefrontServer(
	websiteService websiteService,
	catalogClient catalogClient,
	redisClient *redis.Client,
) StorefrontServer {
	return StorefrontServer{
		websiteService: websiteService,
		catalogClient:  catalogClient,
		redisClient:    redisClient,
	}
}

func (s StorefrontServer) getV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if cached := s.cachedResponse(ctx); cached != nil {
		reply.JSON(ctx, w, http.StatusOK, cached)
		return nil
	}

	deals, err := s.websiteService.WebsiteDeals(ctx)
	if err != nil {
		return fmt.Errorf("websiteService.WebsiteDeals: %w", err)
	}

	response, err := s.buildResponse(ctx, deals)
	if err != nil {
		return err
	}

	s.cacheResponse(ctx, response)

	reply.JSON(ctx, w, http.StatusOK, response)

	return nil
}

func (s StorefrontServer) buildResponse(ctx context.Context, deals []entity.Deal) (rest.StorefrontDealsResponse, error) {
	itemIDs, categoryIDs := collectIDs(deals)

	items, err := s.catalogClient.ItemsByIDs(ctx, itemIDs)
	if err != nil {
		logger(ctx).Error("catalogClient.ItemsByIDs", "error", err)
		items = map[uuid.UUID]catalog.Item{}
	}

	categories, err := s.catalogClient.CategoryNames(ctx, categoryIDs)
	if err != nil {
		logger(ctx).Error("catalogClient.CategoryNames", "error", err)
		categories = map[uuid.UUID]string{}
	}

	out := make([]rest.StorefrontDeal, 0, len(deals))
	for _, deal := range deals {
		out = append(out, newStorefrontDeal(deal, items, categories))
	}

	return rest.StorefrontDealsResponse{Deals: out}, nil
}

func (s StorefrontServer) cachedResponse(ctx context.Context) *rest.StorefrontDealsResponse {
	if s.redisClient == nil {
		return nil
	}

	raw, err := s.redisClient.Get(ctx, storefrontCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger(ctx).Warn("redisClient.Get", "error", err)
		}
		return nil
	}

	var response rest.StorefrontDealsResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		logger(ctx).Warn("unmarshal cached storefront deals", "error", err)
		return nil
	}

	return &response
}

func (s StorefrontServer) cacheResponse(ctx context.Context, response rest.StorefrontDealsResponse) {
	if s.redisClient == nil {
		return
	}

	raw, err := json.Marshal(response)
	if err != nil {
		logger(ctx).Warn("marshal storefront deals", "error", err)
		return
	}

	if err := s.redisClient.Set(ctx, storefrontCacheKey, raw, storefrontCacheTTL).Err(); err != nil {
		logger(ctx).Warn("redisClient.Set", "error", err)
	}
}

func newStorefrontDeal(
	deal entity.Deal,
	items map[uuid.UUID]catalog.Item,
	categories map[uuid.UUID]string,
) rest.StorefrontDeal {
	itemIDs := deal.ApplicableItems
	if deal.Type == value.Combo {
		itemIDs = deal.ComboItems
	}

	itemRefs := make([]rest.NamedRef, 0, len(itemIDs))
	for _, id := range itemIDs {
		itemRefs = append(itemRefs, rest.NamedRef{
			ID:   id.String(),
			Name: items[id].Name,
		})
	}

	categoryRefs := make([]rest.NamedRef, 0, len(deal.ApplicableCategories))
	for _, id := range deal.ApplicableCategories {
		categoryRefs = append(categoryRefs, rest.NamedRef{
			ID:   id.String(),
			Name: categories[id],
		})
	}

	return rest.StorefrontDeal{
		ID:          deal.ID.String(),
		Name:        deal.Name,
		Description: deal.Description,
		BadgeText:   deal.BadgeText,
		DealType:    deal.Type.String(),
		Items:       itemRefs,
		Categories:  categoryRefs,
		StartDate:   formatDate(deal.StartDate),
		EndDate:     formatDate(deal.EndDate),
		StartTime:   formatTimeOfDay(deal.StartTime),
		EndTime:     formatTimeOfDay(deal.EndTime),
		DaysOfWeek:  deal.DaysOfWeek.Days(),
	}
}

func collectIDs(deals []entity.Deal) (itemIDs, categoryIDs []uuid.UUID) {
	seenItems := make(map[uuid.UUID]struct{})
	seenCategories := make(map[uuid.UUID]struct{})

	for _, deal := range deals {
		for _, id := range deal.ApplicableItems {
			if _, ok := seenItems[id]; !ok {
				seenItems[id] = struct{}{}
				itemIDs = append(itemIDs, id)
			}
		}

		for _, id := range deal.ComboItems {
			if _, ok := seenItems[id]; !ok {
				seenItems[id] = struct{}{}
				itemIDs = append(itemIDs, id)
			}
		}

		for _, id := range deal.ApplicableCategories {
			if _, ok := seenCategories[id]; !ok {
				seenCategories[id] = struct{}{}
				categoryIDs = append(categoryIDs, id)
			}
		}
	}

	return itemIDs, categoryIDs
}
