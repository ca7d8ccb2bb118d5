// Package seed はデモ用の初期データを投入する。
// 固定シードの乱数を使うため、生成されるデータは起動ごとに同一になる。
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/hitoshi/haulman/internal/auth"
	"github.com/hitoshi/haulman/internal/model"
	"github.com/hitoshi/haulman/internal/store"
)

// デモデータの共通パスワード。全アカウントでこの値を使う。
const demoSecret = "password123"

const randomSeed = 20240501

var cities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Miami", "Atlanta", "Seattle", "Denver", "Boston",
}

var drivers = []string{
	"John Smith", "Robert Johnson", "Michael Williams", "David Brown",
	"James Davis", "William Miller", "Richard Wilson", "Joseph Moore",
	"Thomas Taylor", "Charles Anderson",
}

var statuses = []model.ShipmentStatus{
	model.ShipmentStatusPending, model.ShipmentStatusInTransit,
	model.ShipmentStatusDelivered, model.ShipmentStatusCancelled,
	model.ShipmentStatusDelayed,
}

var priorities = []model.Priority{
	model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityUrgent,
}

var vehicleTypes = []model.VehicleType{
	model.VehicleTypeTruck, model.VehicleTypeVan, model.VehicleTypeTrailer,
	model.VehicleTypeContainer, model.VehicleTypeRefrigerated,
}

// demoAccount はログイン可能な固定デモアカウントを表す。
type demoAccount struct {
	name       string
	email      string
	age        int
	role       model.Role
	department string
	phone      string
}

var demoAccounts = []demoAccount{
	{"Admin User", "admin@tms.com", 35, model.RoleAdmin, "Management", "+1-555-0101"},
	{"Manager User", "manager@tms.com", 32, model.RoleManager, "Operations", "+1-555-0102"},
	{"Dispatcher User", "dispatcher@tms.com", 30, model.RoleDispatcher, "Dispatch", "+1-555-0103"},
	{"Employee User", "employee@tms.com", 28, model.RoleEmployee, "Logistics", "+1-555-0104"},
}

// Run はデモ用の輸送案件50件と従業員アカウントを投入する。
// パスワードのハッシュ化は1回だけ行い、全デモアカウントで共有する。
func Run(ctx context.Context, shipments store.ShipmentStore, persons store.PersonStore, hasher auth.CredentialHasher) error {
	rng := rand.New(rand.NewSource(randomSeed))

	hash, err := hasher.Hash(demoSecret)
	if err != nil {
		return fmt.Errorf("failed to hash demo secret: %w", err)
	}

	now := time.Now().UTC()

	for _, acct := range demoAccounts {
		age := acct.age
		if _, err := persons.CreatePerson(ctx, model.PersonDraft{
			Name:           acct.name,
			Email:          acct.email,
			CredentialHash: hash,
			Age:            &age,
			Role:           acct.role,
			Department:     acct.department,
			Phone:          acct.phone,
			AttendanceLog:  attendanceLog(rng, now),
		}); err != nil {
			return fmt.Errorf("failed to seed person %s: %w", acct.email, err)
		}
	}

	for i := 1; i <= 50; i++ {
		origin := cities[rng.Intn(len(cities))]
		destination := origin
		for destination == origin {
			destination = cities[rng.Intn(len(cities))]
		}

		weight := 500 + rng.Float64()*4500
		if _, err := shipments.CreateShipment(ctx, model.ShipmentDraft{
			Origin:      origin,
			Destination: destination,
			Status:      statuses[rng.Intn(len(statuses))],
			VehicleType: vehicleTypes[rng.Intn(len(vehicleTypes))],
			Priority:    priorities[rng.Intn(len(priorities))],
			DriverName:  drivers[rng.Intn(len(drivers))],
			DriverPhone: fmt.Sprintf("+1%d", 2000000000+rng.Int63n(8000000000)),
			ETA:         now.Add(time.Duration(rng.Intn(7*24)) * time.Hour),
			Cost:        1000 + rng.Float64()*9000,
			Weight:      &weight,
			Dimensions: fmt.Sprintf("%dx%dx%d ft",
				2+rng.Intn(10), 3+rng.Intn(8), 2+rng.Intn(6)),
			Notes: fmt.Sprintf("Special handling required for item %d", i),
		}); err != nil {
			return fmt.Errorf("failed to seed shipment %d: %w", i, err)
		}
	}

	slog.Info("demo data seeded",
		slog.Int("persons", len(demoAccounts)),
		slog.Int("shipments", 50),
	)

	return nil
}

// attendanceLog は直近30日分の勤怠履歴を生成する。出勤が多めの重み付き。
func attendanceLog(rng *rand.Rand, now time.Time) []model.AttendanceRecord {
	weighted := []model.AttendanceStatus{
		model.AttendancePresent, model.AttendancePresent, model.AttendancePresent,
		model.AttendanceLate, model.AttendanceLeave,
	}

	records := make([]model.AttendanceRecord, 0, 30)
	for i := 0; i < 30; i++ {
		day := now.AddDate(0, 0, -i).Truncate(24 * time.Hour)
		records = append(records, model.AttendanceRecord{
			Date:   day,
			Status: weighted[rng.Intn(len(weighted))],
		})
	}
	return records
}
