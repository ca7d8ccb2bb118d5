// Package query はスナップショットに対するフィルタ・ソート・ページネーションを提供する。
// 入力のスナップショット順を基準に、同値要素の順序が保存される決定的な結果を返す。
package query

import (
	"slices"
	"strings"
)

// Direction はソート方向を表す。
type Direction string

const (
	// Asc は昇順ソート。
	Asc Direction = "ASC"
	// Desc は降順ソート。
	Desc Direction = "DESC"
)

// ParseDirection は文字列をDirectionに解析する。
// 未知の値の場合は(Desc, false)を返す。
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(s) {
	case string(Asc):
		return Asc, true
	case string(Desc):
		return Desc, true
	}
	return Desc, false
}

// デフォルトのページングパラメータ
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Query はクエリ記述子を表す。
type Query[T any] struct {
	// Filters は残す要素の条件。すべての条件を満たす要素のみが残る。
	// 条件の適用順は結果に影響しない（可換）。
	Filters []func(T) bool
	// Compare はソートの3値比較関数。nilの場合はスナップショット順を維持する。
	Compare func(a, b T) int
	// Direction がDescの場合は比較を反転する。同値要素の順序はどちらでも保存される。
	Direction Direction
	// Page は1始まりのページ番号。1未満はDefaultPageに補正される。
	Page int
	// PageSize は1ページあたりの件数。1未満はDefaultPageSizeに補正される。
	PageSize int
}

// Result はページネーション済みの結果とメタデータを表す。
type Result[T any] struct {
	Items       []T
	TotalCount  int // フィルタ後・ページネーション前の総件数
	Page        int
	TotalPages  int // ceil(TotalCount/PageSize)。TotalCountが0のときは0。
	HasNextPage bool
	HasPrevPage bool
}

// Run はスナップショットへクエリを適用する。
// フィルタ → 安定ソート → ページ切り出しの順に処理し、
// 範囲外のページは空のItemsを返す（エラーにはしない）。
func Run[T any](snapshot []T, q Query[T]) Result[T] {
	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	// 1. フィルタ。スナップショット順を保ったまま絞り込む。
	filtered := make([]T, 0, len(snapshot))
	for _, item := range snapshot {
		if matchesAll(item, q.Filters) {
			filtered = append(filtered, item)
		}
	}

	// 2. 安定ソート。同値要素はスナップショット順を維持する（再現性の要件）。
	if q.Compare != nil {
		cmp := q.Compare
		if q.Direction == Desc {
			cmp = func(a, b T) int { return -q.Compare(a, b) }
		}
		slices.SortStableFunc(filtered, cmp)
	}

	// 3. ページ切り出し。範囲は[start, start+pageSize)をフィルタ後の長さに収める。
	// 乗算の前に範囲外判定することで、巨大なページ番号でもオーバーフローしない。
	total := len(filtered)
	start := total
	if page-1 <= total/pageSize {
		start = (page - 1) * pageSize
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return Result[T]{
		Items:       filtered[start:end],
		TotalCount:  total,
		Page:        page,
		TotalPages:  totalPages,
		HasNextPage: end < total,
		HasPrevPage: page > 1,
	}
}

func matchesAll[T any](item T, filters []func(T) bool) bool {
	for _, f := range filters {
		if !f(item) {
			return false
		}
	}
	return true
}

// ContainsFold は大文字小文字を区別しない部分一致判定を行う。
// 文字列フィールドのフィルタで使用する。
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
