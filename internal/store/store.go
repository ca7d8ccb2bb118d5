// Package store は輸送案件・従業員コレクションのインメモリ正本を提供する。
// コレクションの所有権はストアに閉じ、外部へはコピーのみを渡す。
package store

import (
	"context"

	"github.com/hitoshi/haulman/internal/model"
)

// ShipmentStore は輸送案件コレクションへの操作を定義する。
type ShipmentStore interface {
	// CreateShipment はID・追跡コード・タイムスタンプを採番して案件を追加する。
	// 必須フィールドの存在チェックのみ行い、値レベルの検証はAPI境界の責務とする。
	CreateShipment(ctx context.Context, draft model.ShipmentDraft) (*model.Shipment, error)
	// GetShipment はIDで案件のコピーを返す。存在しない場合はNotFoundを返す。
	GetShipment(ctx context.Context, id string) (*model.Shipment, error)
	// UpdateShipment はパッチで指定されたフィールドのみをマージし、UpdatedAtを更新する。
	UpdateShipment(ctx context.Context, id string, patch model.ShipmentPatch) (*model.Shipment, error)
	// DeleteShipment は案件を完全に削除する。存在しない場合はNotFoundを返す。
	DeleteShipment(ctx context.Context, id string) error
	// SnapshotShipments は呼び出し時点の一貫したコピー列を返す。
	// 以後の変更はスナップショットへ波及しない。
	SnapshotShipments(ctx context.Context) []model.Shipment
	// CountShipments は現在の件数を返す。メトリクス用。
	CountShipments() int
}

// PersonStore は従業員コレクションへの操作を定義する。
type PersonStore interface {
	// CreatePerson はIDとタイムスタンプを採番して従業員を追加する。
	// メールアドレスの一意性（大文字小文字を区別しない）に違反する場合はAlreadyExistsを返す。
	CreatePerson(ctx context.Context, draft model.PersonDraft) (*model.Person, error)
	// GetPerson はIDで従業員のコピーを返す。存在しない場合はNotFoundを返す。
	GetPerson(ctx context.Context, id string) (*model.Person, error)
	// FindPersonByEmail はメールアドレス（大文字小文字を区別しない）で従業員を探す。
	// 見つからない場合は(nil, nil)を返す。ログイン経路での列挙防止のためエラーにしない。
	FindPersonByEmail(ctx context.Context, email string) (*model.Person, error)
	// UpdatePerson はパッチで指定されたフィールドのみをマージする。
	UpdatePerson(ctx context.Context, id string, patch model.PersonPatch) (*model.Person, error)
	// DeletePerson は従業員を完全に削除する。存在しない場合はNotFoundを返す。
	DeletePerson(ctx context.Context, id string) error
	// SnapshotPersons は呼び出し時点の一貫したコピー列を返す。
	SnapshotPersons(ctx context.Context) []model.Person
	// CountPersons は現在の件数を返す。メトリクス用。
	CountPersons() int
}
