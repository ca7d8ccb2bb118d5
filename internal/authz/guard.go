// Package authz は(ロール, アクション)の静的な許可表を提供する。
// 判定はここが単一の真実であり、ハンドラーやサービスは独自のロール比較をしない。
package authz

import "github.com/hitoshi/haulman/internal/model"

// Action は認可判定の対象となる操作を表す。
type Action string

const (
	// ActionReadShipment は輸送案件の参照（一覧・詳細）。
	ActionReadShipment Action = "shipment:read"
	// ActionCreateShipment は輸送案件の作成。
	ActionCreateShipment Action = "shipment:create"
	// ActionUpdateShipment は輸送案件の更新。
	ActionUpdateShipment Action = "shipment:update"
	// ActionDeleteShipment は輸送案件の削除。
	ActionDeleteShipment Action = "shipment:delete"
	// ActionReadPerson は従業員の参照（一覧・詳細）。
	ActionReadPerson Action = "person:read"
	// ActionRegisterPerson は従業員の新規登録（セルフサービス）。
	ActionRegisterPerson Action = "person:register"
	// ActionUpdatePerson は従業員の更新。
	ActionUpdatePerson Action = "person:update"
	// ActionDeletePerson は従業員の削除。
	ActionDeletePerson Action = "person:delete"
	// ActionReadOwnProfile は自分自身のプロフィール参照。
	ActionReadOwnProfile Action = "person:me"
)

// Check は(ロール, アクション)を許可表に照合する。
// roleがnilの場合は匿名呼び出しとして扱う。
// 拒否の場合、未認証ならUnauthenticated、権限不足ならForbiddenを返す。
// 呼び出し元はストアへ触れる前にCheckを通すこと。
func Check(role *model.Role, action Action) error {
	switch action {
	case ActionReadShipment, ActionReadPerson, ActionRegisterPerson:
		// 匿名を含む全呼び出し元に許可
		return nil

	case ActionCreateShipment, ActionUpdateShipment:
		return requireRole(role, model.RoleAdmin, model.RoleManager, model.RoleDispatcher)

	case ActionDeleteShipment, ActionUpdatePerson, ActionDeletePerson:
		return requireRole(role, model.RoleAdmin)

	case ActionReadOwnProfile:
		if role == nil {
			return model.NewUnauthenticatedError()
		}
		return nil
	}

	// 未定義のアクションは拒否する
	return model.NewForbiddenError()
}

// requireRole はロールが許可リストに含まれるかを判定する。
func requireRole(role *model.Role, allowed ...model.Role) error {
	if role == nil {
		return model.NewUnauthenticatedError()
	}
	for _, a := range allowed {
		if *role == a {
			return nil
		}
	}
	return model.NewForbiddenError()
}
