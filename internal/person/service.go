// Package person は従業員のクエリ・変更操作を提供する。
// 変更系は認可ガードを通過してからストアに触れる。
package person

import (
	"context"
	"strings"

	"github.com/hitoshi/haulman/internal/authz"
	"github.com/hitoshi/haulman/internal/model"
	"github.com/hitoshi/haulman/internal/query"
	"github.com/hitoshi/haulman/internal/store"
	"github.com/hitoshi/haulman/internal/token"
)

// ListParams は従業員一覧のクエリパラメータを表す。
type ListParams struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder query.Direction
	Role      *model.Role // 完全一致フィルタ
}

// Service は従業員のビジネスロジックを提供する。
type Service struct {
	store store.PersonStore
}

// NewService はServiceを生成する。
func NewService(s store.PersonStore) *Service {
	return &Service{store: s}
}

// ListPersons はフィルタ・ソート・ページネーション付きの一覧を返す。
// 参照は匿名呼び出しにも許可される。
func (s *Service) ListPersons(ctx context.Context, role *model.Role, params ListParams) (*query.Result[model.Person], error) {
	if err := authz.Check(role, authz.ActionReadPerson); err != nil {
		return nil, err
	}

	var filters []func(model.Person) bool
	if params.Role != nil {
		want := *params.Role
		filters = append(filters, func(p model.Person) bool { return p.Role == want })
	}

	snapshot := s.store.SnapshotPersons(ctx)
	result := query.Run(snapshot, query.Query[model.Person]{
		Filters:   filters,
		Compare:   compareBy(params.SortBy),
		Direction: params.SortOrder,
		Page:      params.Page,
		PageSize:  params.PageSize,
	})
	return &result, nil
}

// GetPerson はIDで従業員を返す。存在しない場合はNotFound。
func (s *Service) GetPerson(ctx context.Context, role *model.Role, id string) (*model.Person, error) {
	if err := authz.Check(role, authz.ActionReadPerson); err != nil {
		return nil, err
	}
	return s.store.GetPerson(ctx, id)
}

// Me はセッションの主体である従業員自身を返す。
// 有効なセッションがない場合はUnauthenticated。
func (s *Service) Me(ctx context.Context, claims *token.Claims) (*model.Person, error) {
	if claims == nil {
		return nil, model.NewUnauthenticatedError()
	}
	if err := authz.Check(&claims.Role, authz.ActionReadOwnProfile); err != nil {
		return nil, err
	}
	return s.store.GetPerson(ctx, claims.PersonID)
}

// UpdatePerson は従業員を部分更新する。ADMINのみ。
func (s *Service) UpdatePerson(ctx context.Context, role *model.Role, id string, patch model.PersonPatch) (*model.Person, error) {
	if err := authz.Check(role, authz.ActionUpdatePerson); err != nil {
		return nil, err
	}
	return s.store.UpdatePerson(ctx, id, patch)
}

// DeletePerson は従業員を削除する。ADMINのみ。
// 成功時はtrueを返す。存在しない場合はNotFound。
func (s *Service) DeletePerson(ctx context.Context, role *model.Role, id string) (bool, error) {
	if err := authz.Check(role, authz.ActionDeletePerson); err != nil {
		return false, err
	}
	if err := s.store.DeletePerson(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// compareBy はソートキーに対応する3値比較関数を返す。
// 未知のキーはcreatedAtに落とす。
func compareBy(sortBy string) func(a, b model.Person) int {
	switch sortBy {
	case "name":
		return func(a, b model.Person) int { return strings.Compare(a.Name, b.Name) }
	case "email":
		return func(a, b model.Person) int { return strings.Compare(a.Email, b.Email) }
	case "role":
		return func(a, b model.Person) int { return strings.Compare(string(a.Role), string(b.Role)) }
	case "department":
		return func(a, b model.Person) int { return strings.Compare(a.Department, b.Department) }
	default:
		return func(a, b model.Person) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}
