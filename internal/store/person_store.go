package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/haulman/internal/model"
)

// MemoryPersonStore は従業員のインメモリストア。
// メールアドレスの一意性（大文字小文字を区別しない）をストア内で保証する。
type MemoryPersonStore struct {
	mu         sync.RWMutex
	persons    map[string]*model.Person
	order      []string          // スナップショットの順序。登録順。
	emailIndex map[string]string // 小文字化したメールアドレス → ID
}

// NewMemoryPersonStore はMemoryPersonStoreを生成する。
func NewMemoryPersonStore() *MemoryPersonStore {
	return &MemoryPersonStore{
		persons:    make(map[string]*model.Person),
		emailIndex: make(map[string]string),
	}
}

var _ PersonStore = (*MemoryPersonStore)(nil)

// CreatePerson はIDとタイムスタンプを採番して従業員を追加する。
func (s *MemoryPersonStore) CreatePerson(ctx context.Context, draft model.PersonDraft) (*model.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if draft.Name == "" || draft.Email == "" || draft.CredentialHash == "" {
		return nil, model.NewInvalidRequestError("name, email, 資格情報は必須です")
	}
	if !draft.Role.Valid() {
		return nil, model.NewInvalidRequestError("role が不正です")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(draft.Email)
	if _, exists := s.emailIndex[key]; exists {
		return nil, model.NewEmailAlreadyExistsError(draft.Email)
	}

	person := &model.Person{
		ID:             uuid.New().String(),
		Name:           draft.Name,
		Email:          draft.Email,
		CredentialHash: draft.CredentialHash,
		Age:            copyInt(draft.Age),
		Role:           draft.Role,
		Department:     draft.Department,
		Phone:          draft.Phone,
		AttendanceLog:  copyAttendance(draft.AttendanceLog),
		CreatedAt:      time.Now().UTC(),
	}

	s.persons[person.ID] = person
	s.order = append(s.order, person.ID)
	s.emailIndex[key] = person.ID

	return copyPerson(person), nil
}

// GetPerson はIDで従業員のコピーを返す。
func (s *MemoryPersonStore) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	person, ok := s.persons[id]
	if !ok {
		return nil, model.NewPersonNotFoundError(id)
	}
	return copyPerson(person), nil
}

// FindPersonByEmail はメールアドレスで従業員を探す。見つからない場合は(nil, nil)。
func (s *MemoryPersonStore) FindPersonByEmail(ctx context.Context, email string) (*model.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return copyPerson(s.persons[id]), nil
}

// UpdatePerson はパッチで指定されたフィールドのみをマージする。
func (s *MemoryPersonStore) UpdatePerson(ctx context.Context, id string, patch model.PersonPatch) (*model.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	person, ok := s.persons[id]
	if !ok {
		return nil, model.NewPersonNotFoundError(id)
	}

	if patch.Email != nil {
		newKey := strings.ToLower(*patch.Email)
		oldKey := strings.ToLower(person.Email)
		if newKey != oldKey {
			if _, exists := s.emailIndex[newKey]; exists {
				return nil, model.NewEmailAlreadyExistsError(*patch.Email)
			}
			delete(s.emailIndex, oldKey)
			s.emailIndex[newKey] = person.ID
		}
		person.Email = *patch.Email
	}
	if patch.Name != nil {
		person.Name = *patch.Name
	}
	if patch.Age != nil {
		person.Age = copyInt(patch.Age)
	}
	if patch.Role != nil {
		person.Role = *patch.Role
	}
	if patch.Department != nil {
		person.Department = *patch.Department
	}
	if patch.Phone != nil {
		person.Phone = *patch.Phone
	}

	return copyPerson(person), nil
}

// DeletePerson は従業員を完全に削除する。
func (s *MemoryPersonStore) DeletePerson(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	person, ok := s.persons[id]
	if !ok {
		return model.NewPersonNotFoundError(id)
	}
	delete(s.emailIndex, strings.ToLower(person.Email))
	delete(s.persons, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SnapshotPersons は呼び出し時点の一貫したコピー列を返す。
func (s *MemoryPersonStore) SnapshotPersons(ctx context.Context) []model.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]model.Person, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, *copyPerson(s.persons[id]))
	}
	return snapshot
}

// CountPersons は現在の件数を返す。
func (s *MemoryPersonStore) CountPersons() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.persons)
}

// copyPerson は従業員の独立したコピーを作る。
func copyPerson(p *model.Person) *model.Person {
	c := *p
	c.Age = copyInt(p.Age)
	c.AttendanceLog = copyAttendance(p.AttendanceLog)
	return &c
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func copyAttendance(log []model.AttendanceRecord) []model.AttendanceRecord {
	if log == nil {
		return nil
	}
	c := make([]model.AttendanceRecord, len(log))
	copy(c, log)
	return c
}
