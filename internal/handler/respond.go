// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/haulman/internal/middleware"
	"github.com/hitoshi/haulman/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層のエラーをHTTPステータスに対応付ける。
// APIError以外のエラーは詳細をログにのみ残し、500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("unexpected service error", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	status := http.StatusInternalServerError
	switch apiErr.Code {
	case model.ErrCodeUnauthenticated, model.ErrCodeInvalidCredentials, model.ErrCodeInvalidToken:
		status = http.StatusUnauthorized
	case model.ErrCodeForbidden:
		status = http.StatusForbidden
	case model.ErrCodeShipmentNotFound, model.ErrCodePersonNotFound:
		status = http.StatusNotFound
	case model.ErrCodeEmailAlreadyExists:
		status = http.StatusConflict
	case model.ErrCodeInvalidRequest:
		status = http.StatusBadRequest
	}

	writeAPIErrorResponse(w, status, apiErr)
}

// --- 共通レスポンス型 ---

// shipmentResponse は輸送案件のAPIレスポンス。
type shipmentResponse struct {
	ID           string    `json:"id"`
	TrackingCode string    `json:"trackingCode"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	Status       string    `json:"status"`
	VehicleType  string    `json:"vehicleType"`
	Priority     string    `json:"priority"`
	DriverName   string    `json:"driverName"`
	DriverPhone  string    `json:"driverPhone,omitempty"`
	ETA          time.Time `json:"eta"`
	Cost         float64   `json:"cost"`
	Weight       *float64  `json:"weight,omitempty"`
	Dimensions   string    `json:"dimensions,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toShipmentResponse(s *model.Shipment) shipmentResponse {
	return shipmentResponse{
		ID:           s.ID,
		TrackingCode: s.TrackingCode,
		Origin:       s.Origin,
		Destination:  s.Destination,
		Status:       string(s.Status),
		VehicleType:  string(s.VehicleType),
		Priority:     string(s.Priority),
		DriverName:   s.DriverName,
		DriverPhone:  s.DriverPhone,
		ETA:          s.ETA,
		Cost:         s.Cost,
		Weight:       s.Weight,
		Dimensions:   s.Dimensions,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// attendanceResponse は勤怠履歴1件分のAPIレスポンス。
type attendanceResponse struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

// personResponse は従業員のAPIレスポンス。資格情報ハッシュは含めない。
type personResponse struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	Age        *int                 `json:"age,omitempty"`
	Role       string               `json:"role"`
	Department string               `json:"department,omitempty"`
	Phone      string               `json:"phone,omitempty"`
	Attendance []attendanceResponse `json:"attendance"`
	CreatedAt  time.Time            `json:"createdAt"`
}

func toPersonResponse(p *model.Person) personResponse {
	attendance := make([]attendanceResponse, 0, len(p.AttendanceLog))
	for _, rec := range p.AttendanceLog {
		attendance = append(attendance, attendanceResponse{
			Date:   rec.Date,
			Status: string(rec.Status),
		})
	}
	return personResponse{
		ID:         p.ID,
		Name:       p.Name,
		Email:      p.Email,
		Age:        p.Age,
		Role:       string(p.Role),
		Department: p.Department,
		Phone:      p.Phone,
		Attendance: attendance,
		CreatedAt:  p.CreatedAt,
	}
}
