// Package model はドメインモデルを定義する。
package model

import "time"

// Shipment は輸送案件（配送1件分）を表す。
type Shipment struct {
	ID           string    // 不変の内部ID
	TrackingCode string    // 人間向けの追跡コード（例: SH100001）。作成後は不変。
	Origin       string
	Destination  string
	Status       ShipmentStatus
	VehicleType  VehicleType
	Priority     Priority
	DriverName   string
	DriverPhone  string // 任意
	ETA          time.Time
	Cost         float64
	Weight       *float64 // 任意。非負。
	Dimensions   string   // 任意の自由記述（例: "4x5x3 ft"）
	Notes        string   // 任意
	CreatedAt    time.Time
	UpdatedAt    time.Time // 変更のたびに更新される。常に CreatedAt 以上。
}

// ShipmentStatus は輸送案件のステータスを表す。
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "PENDING"
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
	ShipmentStatusCancelled ShipmentStatus = "CANCELLED"
	ShipmentStatusDelayed   ShipmentStatus = "DELAYED"
)

// Valid はステータスが定義済みの値かどうかを返す。
func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentStatusPending, ShipmentStatusInTransit, ShipmentStatusDelivered,
		ShipmentStatusCancelled, ShipmentStatusDelayed:
		return true
	}
	return false
}

// VehicleType は輸送に使用する車両種別を表す。
type VehicleType string

const (
	VehicleTypeTruck        VehicleType = "TRUCK"
	VehicleTypeVan          VehicleType = "VAN"
	VehicleTypeTrailer      VehicleType = "TRAILER"
	VehicleTypeContainer    VehicleType = "CONTAINER"
	VehicleTypeRefrigerated VehicleType = "REFRIGERATED"
)

// Valid は車両種別が定義済みの値かどうかを返す。
func (v VehicleType) Valid() bool {
	switch v {
	case VehicleTypeTruck, VehicleTypeVan, VehicleTypeTrailer,
		VehicleTypeContainer, VehicleTypeRefrigerated:
		return true
	}
	return false
}

// Priority は輸送案件の優先度を表す。
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Valid は優先度が定義済みの値かどうかを返す。
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ShipmentDraft は輸送案件の新規作成に必要なフィールドを表す。
// ID・追跡コード・タイムスタンプはストアが採番する。
type ShipmentDraft struct {
	Origin      string
	Destination string
	Status      ShipmentStatus // 空の場合は PENDING になる
	VehicleType VehicleType
	Priority    Priority
	DriverName  string
	DriverPhone string
	ETA         time.Time
	Cost        float64
	Weight      *float64
	Dimensions  string
	Notes       string
}

// ShipmentPatch は輸送案件の部分更新を表す。
// nilのフィールドは変更されない。ID・追跡コード・作成日時は更新対象外。
type ShipmentPatch struct {
	Origin      *string
	Destination *string
	Status      *ShipmentStatus
	VehicleType *VehicleType
	Priority    *Priority
	DriverName  *string
	DriverPhone *string
	ETA         *time.Time
	Cost        *float64
	Weight      *float64
	Dimensions  *string
	Notes       *string
}
