package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/haulman/internal/middleware"
	"github.com/hitoshi/haulman/internal/model"
	"github.com/hitoshi/haulman/internal/person"
	"github.com/hitoshi/haulman/internal/query"
	"github.com/hitoshi/haulman/internal/token"
)

// PersonServiceInterface は従業員ハンドラーが必要とするサービスインターフェース。
type PersonServiceInterface interface {
	ListPersons(ctx context.Context, role *model.Role, params person.ListParams) (*query.Result[model.Person], error)
	GetPerson(ctx context.Context, role *model.Role, id string) (*model.Person, error)
	Me(ctx context.Context, claims *token.Claims) (*model.Person, error)
	UpdatePerson(ctx context.Context, role *model.Role, id string, patch model.PersonPatch) (*model.Person, error)
	DeletePerson(ctx context.Context, role *model.Role, id string) (bool, error)
}

// PersonHandler は従業員のHTTPハンドラー。
type PersonHandler struct {
	service PersonServiceInterface
}

// NewPersonHandler はPersonHandlerを生成する。
func NewPersonHandler(service PersonServiceInterface) *PersonHandler {
	return &PersonHandler{service: service}
}

// personListResponse は一覧のレスポンスボディ。
type personListResponse struct {
	Persons     []personResponse `json:"persons"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	TotalPages  int              `json:"totalPages"`
	HasNextPage bool             `json:"hasNextPage"`
	HasPrevPage bool             `json:"hasPrevPage"`
}

// updatePersonRequest は部分更新のリクエストボディ。
// 省略されたフィールドは変更されない。パスワードと勤怠履歴はここでは変更できない。
type updatePersonRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Age        *int    `json:"age"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Phone      *string `json:"phone"`
}

// List はGET /api/personsを処理する。
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	params, apiErr := parsePersonListParams(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	result, err := h.service.ListPersons(r.Context(), middleware.RoleFromContext(r.Context()), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]personResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toPersonResponse(&result.Items[i]))
	}
	writeJSON(w, http.StatusOK, personListResponse{
		Persons:     items,
		Total:       result.TotalCount,
		Page:        result.Page,
		TotalPages:  result.TotalPages,
		HasNextPage: result.HasNextPage,
		HasPrevPage: result.HasPrevPage,
	})
}

// Get はGET /api/persons/{id}を処理する。
func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.GetPerson(r.Context(), middleware.RoleFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// Me はGET /auth/meを処理する。セッションの主体である従業員自身を返す。
func (h *PersonHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	p, err := h.service.Me(r.Context(), claims)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// Update はPUT /api/persons/{id}を処理する。
func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid JSON body"))
		return
	}

	patch := model.PersonPatch{
		Name:       req.Name,
		Email:      req.Email,
		Age:        req.Age,
		Department: req.Department,
		Phone:      req.Phone,
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		if !role.Valid() {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("unknown role: "+*req.Role))
			return
		}
		patch.Role = &role
	}

	p, err := h.service.UpdatePerson(r.Context(), middleware.RoleFromContext(r.Context()), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// Delete はDELETE /api/persons/{id}を処理する。
func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := h.service.DeletePerson(r.Context(), middleware.RoleFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// parsePersonListParams はクエリパラメータを解析する。
func parsePersonListParams(r *http.Request) (person.ListParams, *model.APIError) {
	q := r.URL.Query()

	params := person.ListParams{
		Page:      parseIntOr(q.Get("page"), query.DefaultPage),
		PageSize:  parseIntOr(q.Get("page_size"), query.DefaultPageSize),
		SortBy:    q.Get("sort_by"),
		SortOrder: query.Desc,
	}

	if v := q.Get("sort_order"); v != "" {
		dir, ok := query.ParseDirection(v)
		if !ok {
			return params, model.NewInvalidRequestError("unknown sort_order: " + v)
		}
		params.SortOrder = dir
	}

	if v := q.Get("role"); v != "" {
		role := model.Role(v)
		if !role.Valid() {
			return params, model.NewInvalidRequestError("unknown role: " + v)
		}
		params.Role = &role
	}

	return params, nil
}
