package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapExchange/src/dao"
	"github.com/ProjectsTask/EasySwapExchange/src/service/svc"
	types "github.com/ProjectsTask/EasySwapExchange/src/types/v1"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetActivities pages through the marketplace history.
func GetActivities(ctx context.Context, svcCtx *svc.ServerCtx, param types.ActivityFilterParam) (*types.ActivityResp, error) {
	page := param.Page
	if page < 1 {
		page = 1
	}
	pageSize := param.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	activities, total, err := svcCtx.Dao.QueryActivities(ctx, dao.ActivityFilter{
		CollectionAddress: param.CollectionAddress,
		TokenID:           param.TokenID,
		UserAddress:       param.UserAddress,
		EventTypes:        param.EventTypes,
	}, page, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed on query activities")
	}

	items := make([]types.ActivityItem, 0, len(activities))
	for _, a := range activities {
		items = append(items, types.ActivityItem{
			EventType:         dao.EventTypeName(a.EventType),
			OfferKind:         a.OfferKind,
			OfferID:           a.OfferID,
			CollectionAddress: a.CollectionAddress,
			TokenID:           a.TokenID,
			Units:             a.Units,
			Currency:          a.Currency,
			Price:             a.Price.String(),
			Maker:             a.Maker,
			Taker:             a.Taker,
			EventTime:         a.EventTime,
		})
	}
	return &types.ActivityResp{Result: items, Count: total}, nil
}
