package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/haulman/internal/middleware"
	"github.com/hitoshi/haulman/internal/model"
	"github.com/hitoshi/haulman/internal/query"
	"github.com/hitoshi/haulman/internal/shipment"
)

// ShipmentServiceInterface は輸送案件ハンドラーが必要とするサービスインターフェース。
type ShipmentServiceInterface interface {
	ListShipments(ctx context.Context, role *model.Role, params shipment.ListParams) (*query.Result[model.Shipment], error)
	GetShipment(ctx context.Context, role *model.Role, id string) (*model.Shipment, error)
	CreateShipment(ctx context.Context, role *model.Role, draft model.ShipmentDraft) (*model.Shipment, error)
	UpdateShipment(ctx context.Context, role *model.Role, id string, patch model.ShipmentPatch) (*model.Shipment, error)
	DeleteShipment(ctx context.Context, role *model.Role, id string) (bool, error)
}

// ShipmentHandler は輸送案件のHTTPハンドラー。
type ShipmentHandler struct {
	service ShipmentServiceInterface
}

// NewShipmentHandler はShipmentHandlerを生成する。
func NewShipmentHandler(service ShipmentServiceInterface) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// shipmentListResponse は一覧のレスポンスボディ。
type shipmentListResponse struct {
	Shipments   []shipmentResponse `json:"shipments"`
	Total       int                `json:"total"`
	Page        int                `json:"page"`
	TotalPages  int                `json:"totalPages"`
	HasNextPage bool               `json:"hasNextPage"`
	HasPrevPage bool               `json:"hasPrevPage"`
}

// createShipmentRequest は作成のリクエストボディ。
type createShipmentRequest struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Status      string   `json:"status,omitempty"`
	VehicleType string   `json:"vehicleType"`
	Priority    string   `json:"priority"`
	DriverName  string   `json:"driverName"`
	DriverPhone string   `json:"driverPhone,omitempty"`
	ETA         string   `json:"eta"`
	Cost        float64  `json:"cost"`
	Weight      *float64 `json:"weight,omitempty"`
	Dimensions  string   `json:"dimensions,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// updateShipmentRequest は部分更新のリクエストボディ。
// 省略されたフィールドは変更されない。
type updateShipmentRequest struct {
	Origin      *string  `json:"origin"`
	Destination *string  `json:"destination"`
	Status      *string  `json:"status"`
	VehicleType *string  `json:"vehicleType"`
	Priority    *string  `json:"priority"`
	DriverName  *string  `json:"driverName"`
	DriverPhone *string  `json:"driverPhone"`
	ETA         *string  `json:"eta"`
	Cost        *float64 `json:"cost"`
	Weight      *float64 `json:"weight"`
	Dimensions  *string  `json:"dimensions"`
	Notes       *string  `json:"notes"`
}

// List はGET /api/shipmentsを処理する。
func (h *ShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	params, apiErr := parseShipmentListParams(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	result, err := h.service.ListShipments(r.Context(), middleware.RoleFromContext(r.Context()), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]shipmentResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toShipmentResponse(&result.Items[i]))
	}
	writeJSON(w, http.StatusOK, shipmentListResponse{
		Shipments:   items,
		Total:       result.TotalCount,
		Page:        result.Page,
		TotalPages:  result.TotalPages,
		HasNextPage: result.HasNextPage,
		HasPrevPage: result.HasPrevPage,
	})
}

// Get はGET /api/shipments/{id}を処理する。
func (h *ShipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sh, err := h.service.GetShipment(r.Context(), middleware.RoleFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentResponse(sh))
}

// Create はPOST /api/shipmentsを処理する。
func (h *ShipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid JSON body"))
		return
	}

	draft, apiErr := req.toDraft()
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	sh, err := h.service.CreateShipment(r.Context(), middleware.RoleFromContext(r.Context()), draft)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShipmentResponse(sh))
}

// Update はPUT /api/shipments/{id}を処理する。
func (h *ShipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid JSON body"))
		return
	}

	patch, apiErr := req.toPatch()
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	sh, err := h.service.UpdateShipment(r.Context(), middleware.RoleFromContext(r.Context()), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentResponse(sh))
}

// Delete はDELETE /api/shipments/{id}を処理する。
func (h *ShipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := h.service.DeleteShipment(r.Context(), middleware.RoleFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// parseShipmentListParams はクエリパラメータを解析する。
// 未知の列挙値は400、未知のソートキーはサービス側でcreatedAtに落ちる。
func parseShipmentListParams(r *http.Request) (shipment.ListParams, *model.APIError) {
	q := r.URL.Query()

	params := shipment.ListParams{
		Page:        parseIntOr(q.Get("page"), query.DefaultPage),
		PageSize:    parseIntOr(q.Get("page_size"), query.DefaultPageSize),
		SortBy:      q.Get("sort_by"),
		SortOrder:   query.Desc,
		Origin:      q.Get("origin"),
		Destination: q.Get("destination"),
	}

	if v := q.Get("sort_order"); v != "" {
		dir, ok := query.ParseDirection(v)
		if !ok {
			return params, model.NewInvalidRequestError("unknown sort_order: " + v)
		}
		params.SortOrder = dir
	}

	if v := q.Get("status"); v != "" {
		status := model.ShipmentStatus(v)
		if !status.Valid() {
			return params, model.NewInvalidRequestError("unknown status: " + v)
		}
		params.Status = &status
	}

	if v := q.Get("priority"); v != "" {
		priority := model.Priority(v)
		if !priority.Valid() {
			return params, model.NewInvalidRequestError("unknown priority: " + v)
		}
		params.Priority = &priority
	}

	return params, nil
}

func (req createShipmentRequest) toDraft() (model.ShipmentDraft, *model.APIError) {
	draft := model.ShipmentDraft{
		Origin:      req.Origin,
		Destination: req.Destination,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
		Cost:        req.Cost,
		Weight:      req.Weight,
		Dimensions:  req.Dimensions,
		Notes:       req.Notes,
	}

	if req.Status != "" {
		status := model.ShipmentStatus(req.Status)
		if !status.Valid() {
			return draft, model.NewInvalidRequestError("unknown status: " + req.Status)
		}
		draft.Status = status
	}

	vehicleType := model.VehicleType(req.VehicleType)
	if !vehicleType.Valid() {
		return draft, model.NewInvalidRequestError("unknown vehicleType: " + req.VehicleType)
	}
	draft.VehicleType = vehicleType

	priority := model.Priority(req.Priority)
	if !priority.Valid() {
		return draft, model.NewInvalidRequestError("unknown priority: " + req.Priority)
	}
	draft.Priority = priority

	if req.ETA != "" {
		eta, err := time.Parse(time.RFC3339, req.ETA)
		if err != nil {
			return draft, model.NewInvalidRequestError("eta must be RFC3339: " + req.ETA)
		}
		draft.ETA = eta
	}

	if req.Cost < 0 {
		return draft, model.NewInvalidRequestError("cost must not be negative")
	}
	if req.Weight != nil && *req.Weight < 0 {
		return draft, model.NewInvalidRequestError("weight must not be negative")
	}

	return draft, nil
}

func (req updateShipmentRequest) toPatch() (model.ShipmentPatch, *model.APIError) {
	patch := model.ShipmentPatch{
		Origin:      req.Origin,
		Destination: req.Destination,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
		Cost:        req.Cost,
		Weight:      req.Weight,
		Dimensions:  req.Dimensions,
		Notes:       req.Notes,
	}

	if req.Status != nil {
		status := model.ShipmentStatus(*req.Status)
		if !status.Valid() {
			return patch, model.NewInvalidRequestError("unknown status: " + *req.Status)
		}
		patch.Status = &status
	}

	if req.VehicleType != nil {
		vehicleType := model.VehicleType(*req.VehicleType)
		if !vehicleType.Valid() {
			return patch, model.NewInvalidRequestError("unknown vehicleType: " + *req.VehicleType)
		}
		patch.VehicleType = &vehicleType
	}

	if req.Priority != nil {
		priority := model.Priority(*req.Priority)
		if !priority.Valid() {
			return patch, model.NewInvalidRequestError("unknown priority: " + *req.Priority)
		}
		patch.Priority = &priority
	}

	if req.ETA != nil {
		eta, err := time.Parse(time.RFC3339, *req.ETA)
		if err != nil {
			return patch, model.NewInvalidRequestError("eta must be RFC3339: " + *req.ETA)
		}
		patch.ETA = &eta
	}

	if req.Cost != nil && *req.Cost < 0 {
		return patch, model.NewInvalidRequestError("cost must not be negative")
	}
	if req.Weight != nil && *req.Weight < 0 {
		return patch, model.NewInvalidRequestError("weight must not be negative")
	}

	return patch, nil
}

// parseIntOr は文字列を正の整数として解析する。解析できない場合はデフォルト値を返す。
func parseIntOr(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return defaultVal
	}
	return n
}
