package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/haulman/internal/model"
)

// trackingCodeBase は追跡コードの開始番号。以降は単調増加で採番する。
const trackingCodeBase = 100000

// MemoryShipmentStore は輸送案件のインメモリストア。
// ミューテックスで変更を直列化し、読み取りは呼び出し時点のスナップショットを返す。
type MemoryShipmentStore struct {
	mu        sync.RWMutex
	shipments map[string]*model.Shipment
	order     []string // スナップショットの順序。新しい案件が先頭に来る。
	nextCode  int
}

// NewMemoryShipmentStore はMemoryShipmentStoreを生成する。
func NewMemoryShipmentStore() *MemoryShipmentStore {
	return &MemoryShipmentStore{
		shipments: make(map[string]*model.Shipment),
		nextCode:  trackingCodeBase,
	}
}

var _ ShipmentStore = (*MemoryShipmentStore)(nil)

// CreateShipment はID・追跡コード・タイムスタンプを採番して案件を追加する。
func (s *MemoryShipmentStore) CreateShipment(ctx context.Context, draft model.ShipmentDraft) (*model.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// 必須フィールドの存在チェックのみ。値レベルの検証はAPI境界の責務。
	if draft.Origin == "" || draft.Destination == "" || draft.DriverName == "" {
		return nil, model.NewInvalidRequestError("origin, destination, driver_name は必須です")
	}

	status := draft.Status
	if status == "" {
		status = model.ShipmentStatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.nextCode++
	shipment := &model.Shipment{
		ID:           uuid.New().String(),
		TrackingCode: fmt.Sprintf("SH%06d", s.nextCode),
		Origin:       draft.Origin,
		Destination:  draft.Destination,
		Status:       status,
		VehicleType:  draft.VehicleType,
		Priority:     draft.Priority,
		DriverName:   draft.DriverName,
		DriverPhone:  draft.DriverPhone,
		ETA:          draft.ETA,
		Cost:         draft.Cost,
		Weight:       copyFloat(draft.Weight),
		Dimensions:   draft.Dimensions,
		Notes:        draft.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.shipments[shipment.ID] = shipment
	// 新しい案件を先頭に置く。一覧のデフォルト（作成日時の降順）と同調する。
	s.order = append([]string{shipment.ID}, s.order...)

	return copyShipment(shipment), nil
}

// GetShipment はIDで案件のコピーを返す。
func (s *MemoryShipmentStore) GetShipment(ctx context.Context, id string) (*model.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	shipment, ok := s.shipments[id]
	if !ok {
		return nil, model.NewShipmentNotFoundError(id)
	}
	return copyShipment(shipment), nil
}

// UpdateShipment はパッチで指定されたフィールドのみをマージする。
// UpdatedAtは必ず前回より後になる。
func (s *MemoryShipmentStore) UpdateShipment(ctx context.Context, id string, patch model.ShipmentPatch) (*model.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	shipment, ok := s.shipments[id]
	if !ok {
		return nil, model.NewShipmentNotFoundError(id)
	}

	if patch.Origin != nil {
		shipment.Origin = *patch.Origin
	}
	if patch.Destination != nil {
		shipment.Destination = *patch.Destination
	}
	if patch.Status != nil {
		shipment.Status = *patch.Status
	}
	if patch.VehicleType != nil {
		shipment.VehicleType = *patch.VehicleType
	}
	if patch.Priority != nil {
		shipment.Priority = *patch.Priority
	}
	if patch.DriverName != nil {
		shipment.DriverName = *patch.DriverName
	}
	if patch.DriverPhone != nil {
		shipment.DriverPhone = *patch.DriverPhone
	}
	if patch.ETA != nil {
		shipment.ETA = *patch.ETA
	}
	if patch.Cost != nil {
		shipment.Cost = *patch.Cost
	}
	if patch.Weight != nil {
		shipment.Weight = copyFloat(patch.Weight)
	}
	if patch.Dimensions != nil {
		shipment.Dimensions = *patch.Dimensions
	}
	if patch.Notes != nil {
		shipment.Notes = *patch.Notes
	}

	// 同一クロック刻み内の連続更新でも単調増加を保証する
	now := time.Now().UTC()
	if !now.After(shipment.UpdatedAt) {
		now = shipment.UpdatedAt.Add(time.Nanosecond)
	}
	shipment.UpdatedAt = now

	return copyShipment(shipment), nil
}

// DeleteShipment は案件を完全に削除する。
func (s *MemoryShipmentStore) DeleteShipment(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shipments[id]; !ok {
		return model.NewShipmentNotFoundError(id)
	}
	delete(s.shipments, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SnapshotShipments は呼び出し時点の一貫したコピー列を返す。
func (s *MemoryShipmentStore) SnapshotShipments(ctx context.Context) []model.Shipment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]model.Shipment, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, *copyShipment(s.shipments[id]))
	}
	return snapshot
}

// CountShipments は現在の件数を返す。
func (s *MemoryShipmentStore) CountShipments() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shipments)
}

// copyShipment は案件の独立したコピーを作る。
func copyShipment(s *model.Shipment) *model.Shipment {
	c := *s
	c.Weight = copyFloat(s.Weight)
	return &c
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
