// Package shipment は輸送案件のクエリ・変更操作を提供する。
// 変更系は認可ガードを通過してからストアに触れる。
package shipment

import (
	"cmp"
	"context"
	"strings"

	"github.com/hitoshi/haulman/internal/authz"
	"github.com/hitoshi/haulman/internal/model"
	"github.com/hitoshi/haulman/internal/query"
	"github.com/hitoshi/haulman/internal/store"
)

// デフォルトのソートキー。未知のキーが指定された場合もこれに落ちる。
const defaultSortKey = "createdAt"

// ListParams は輸送案件一覧のクエリパラメータを表す。
type ListParams struct {
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   query.Direction
	Status      *model.ShipmentStatus // 完全一致フィルタ
	Priority    *model.Priority       // 完全一致フィルタ
	Origin      string                // 部分一致フィルタ（大文字小文字を区別しない）
	Destination string                // 部分一致フィルタ（大文字小文字を区別しない）
}

// Service は輸送案件のビジネスロジックを提供する。
type Service struct {
	store store.ShipmentStore
}

// NewService はServiceを生成する。
func NewService(s store.ShipmentStore) *Service {
	return &Service{store: s}
}

// ListShipments はフィルタ・ソート・ページネーション付きの一覧を返す。
// 参照は匿名呼び出しにも許可される。
func (s *Service) ListShipments(ctx context.Context, role *model.Role, params ListParams) (*query.Result[model.Shipment], error) {
	if err := authz.Check(role, authz.ActionReadShipment); err != nil {
		return nil, err
	}

	var filters []func(model.Shipment) bool
	if params.Status != nil {
		status := *params.Status
		filters = append(filters, func(sh model.Shipment) bool { return sh.Status == status })
	}
	if params.Priority != nil {
		priority := *params.Priority
		filters = append(filters, func(sh model.Shipment) bool { return sh.Priority == priority })
	}
	if params.Origin != "" {
		origin := params.Origin
		filters = append(filters, func(sh model.Shipment) bool { return query.ContainsFold(sh.Origin, origin) })
	}
	if params.Destination != "" {
		destination := params.Destination
		filters = append(filters, func(sh model.Shipment) bool { return query.ContainsFold(sh.Destination, destination) })
	}

	snapshot := s.store.SnapshotShipments(ctx)
	result := query.Run(snapshot, query.Query[model.Shipment]{
		Filters:   filters,
		Compare:   compareBy(params.SortBy),
		Direction: params.SortOrder,
		Page:      params.Page,
		PageSize:  params.PageSize,
	})
	return &result, nil
}

// GetShipment はIDで輸送案件を返す。存在しない場合はNotFound。
func (s *Service) GetShipment(ctx context.Context, role *model.Role, id string) (*model.Shipment, error) {
	if err := authz.Check(role, authz.ActionReadShipment); err != nil {
		return nil, err
	}
	return s.store.GetShipment(ctx, id)
}

// CreateShipment は輸送案件を作成する。ADMIN・MANAGER・DISPATCHERのみ。
func (s *Service) CreateShipment(ctx context.Context, role *model.Role, draft model.ShipmentDraft) (*model.Shipment, error) {
	if err := authz.Check(role, authz.ActionCreateShipment); err != nil {
		return nil, err
	}
	return s.store.CreateShipment(ctx, draft)
}

// UpdateShipment は輸送案件を部分更新する。ADMIN・MANAGER・DISPATCHERのみ。
func (s *Service) UpdateShipment(ctx context.Context, role *model.Role, id string, patch model.ShipmentPatch) (*model.Shipment, error) {
	if err := authz.Check(role, authz.ActionUpdateShipment); err != nil {
		return nil, err
	}
	return s.store.UpdateShipment(ctx, id, patch)
}

// DeleteShipment は輸送案件を削除する。ADMINのみ。
// 成功時はtrueを返す。存在しない場合はNotFound。
func (s *Service) DeleteShipment(ctx context.Context, role *model.Role, id string) (bool, error) {
	if err := authz.Check(role, authz.ActionDeleteShipment); err != nil {
		return false, err
	}
	if err := s.store.DeleteShipment(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// compareBy はソートキーに対応する3値比較関数を返す。
// フィールドの意味型に従って比較する（文字列は辞書順、時刻は時系列、数値は大小）。
// 未知のキーはcreatedAtに落とし、全順序を常に保証する。
func compareBy(sortBy string) func(a, b model.Shipment) int {
	switch sortBy {
	case "trackingCode":
		return func(a, b model.Shipment) int { return strings.Compare(a.TrackingCode, b.TrackingCode) }
	case "origin":
		return func(a, b model.Shipment) int { return strings.Compare(a.Origin, b.Origin) }
	case "destination":
		return func(a, b model.Shipment) int { return strings.Compare(a.Destination, b.Destination) }
	case "status":
		return func(a, b model.Shipment) int { return strings.Compare(string(a.Status), string(b.Status)) }
	case "vehicleType":
		return func(a, b model.Shipment) int { return strings.Compare(string(a.VehicleType), string(b.VehicleType)) }
	case "priority":
		return func(a, b model.Shipment) int { return strings.Compare(string(a.Priority), string(b.Priority)) }
	case "driverName":
		return func(a, b model.Shipment) int { return strings.Compare(a.DriverName, b.DriverName) }
	case "eta":
		return func(a, b model.Shipment) int { return a.ETA.Compare(b.ETA) }
	case "cost":
		return func(a, b model.Shipment) int { return cmp.Compare(a.Cost, b.Cost) }
	case "weight":
		return func(a, b model.Shipment) int { return cmp.Compare(deref(a.Weight), deref(b.Weight)) }
	case "updatedAt":
		return func(a, b model.Shipment) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case defaultSortKey:
		fallthrough
	default:
		return func(a, b model.Shipment) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
