package model

import "time"

// Person は従業員（サービス利用者）を表す。
type Person struct {
	ID             string
	Name           string
	Email          string // 全Personの中で一意（大文字小文字を区別しない）
	CredentialHash string // 一方向ハッシュ済みのパスワード。APIレスポンスには含めない。
	Age            *int   // 任意
	Role           Role
	Department     string // 任意
	Phone          string // 任意
	AttendanceLog  []AttendanceRecord // 追記専用の勤怠履歴。CRUDでは変更されない。
	CreatedAt      time.Time
}

// Role は従業員の権限ロールを表す。
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleDispatcher Role = "DISPATCHER"
	RoleEmployee   Role = "EMPLOYEE"
)

// Valid はロールが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDispatcher, RoleEmployee:
		return true
	}
	return false
}

// AttendanceStatus は1日分の勤怠状態を表す。
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceLeave   AttendanceStatus = "LEAVE"
)

// Valid は勤怠状態が定義済みの値かどうかを返す。
func (a AttendanceStatus) Valid() bool {
	switch a {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceLeave:
		return true
	}
	return false
}

// AttendanceRecord は勤怠履歴の1エントリを表す。
type AttendanceRecord struct {
	Date   time.Time
	Status AttendanceStatus
}

// PersonDraft は従業員の新規登録に必要なフィールドを表す。
// IDと作成日時はストアが採番する。
type PersonDraft struct {
	Name           string
	Email          string
	CredentialHash string
	Age            *int
	Role           Role
	Department     string
	Phone          string
	AttendanceLog  []AttendanceRecord
}

// PersonPatch は従業員の部分更新を表す。nilのフィールドは変更されない。
// 資格情報ハッシュと勤怠履歴はこのパッチでは更新できない。
type PersonPatch struct {
	Name       *string
	Email      *string // 変更時も一意性制約が適用される
	Age        *int
	Role       *Role
	Department *string
	Phone      *string
}
