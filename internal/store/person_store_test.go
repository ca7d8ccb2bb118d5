package store

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/haulman/internal/model"
)

func validPersonDraft(email string) model.PersonDraft {
	return model.PersonDraft{
		Name:           "Test User",
		Email:          email,
		CredentialHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$a2V5",
		Role:           model.RoleEmployee,
		Department:     "Logistics",
	}
}

func TestMemoryPersonStore_Create_AssignsGeneratedFields(t *testing.T) {
	s := NewMemoryPersonStore()

	created, err := s.CreatePerson(context.Background(), validPersonDraft("alice@example.com"))
	if err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}

	if created.ID == "" {
		t.Error("ID should be assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryPersonStore_Create_RejectsInvalidRole(t *testing.T) {
	s := NewMemoryPersonStore()

	draft := validPersonDraft("alice@example.com")
	draft.Role = model.Role("SUPERUSER")

	_, err := s.CreatePerson(context.Background(), draft)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRequest {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestMemoryPersonStore_Create_EmailUniquenessIsCaseInsensitive(t *testing.T) {
	s := NewMemoryPersonStore()
	ctx := context.Background()

	if _, err := s.CreatePerson(ctx, validPersonDraft("Alice@Example.com")); err != nil {
		t.Fatalf("first CreatePerson() error = %v", err)
	}

	_, err := s.CreatePerson(ctx, validPersonDraft("alice@example.COM"))

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailAlreadyExists {
		t.Errorf("error = %v, want EMAIL_ALREADY_EXISTS", err)
	}
}

func TestMemoryPersonStore_FindByEmail_CaseInsensitive(t *testing.T) {
	s := NewMemoryPersonStore()
	ctx := context.Background()

	created, _ := s.CreatePerson(ctx, validPersonDraft("Bob@Example.com"))

	found, err := s.FindPersonByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("FindPersonByEmail() error = %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("found = %v, want person %s", found, created.ID)
	}
}

func TestMemoryPersonStore_FindByEmail_AbsentIsNilNil(t *testing.T) {
	s := NewMemoryPersonStore()

	found, err := s.FindPersonByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Errorf("FindPersonByEmail() error = %v, want nil", err)
	}
	if found != nil {
		t.Errorf("found = %v, want nil", found)
	}
}

func TestMemoryPersonStore_Update_EmailChangeKeepsUniqueness(t *testing.T) {
	s := NewMemoryPersonStore()
	ctx := context.Background()

	alice, _ := s.CreatePerson(ctx, validPersonDraft("alice@example.com"))
	_, _ = s.CreatePerson(ctx, validPersonDraft("bob@example.com"))

	// 既存アドレスへの変更は拒否される
	taken := "BOB@example.com"
	_, err := s.UpdatePerson(ctx, alice.ID, model.PersonPatch{Email: &taken})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailAlreadyExists {
		t.Errorf("error = %v, want EMAIL_ALREADY_EXISTS", err)
	}

	// 空いているアドレスへは変更でき、旧アドレスは再利用可能になる
	free := "carol@example.com"
	if _, err := s.UpdatePerson(ctx, alice.ID, model.PersonPatch{Email: &free}); err != nil {
		t.Fatalf("UpdatePerson() error = %v", err)
	}
	if found, _ := s.FindPersonByEmail(ctx, "alice@example.com"); found != nil {
		t.Error("old email should no longer resolve")
	}
	if found, _ := s.FindPersonByEmail(ctx, "carol@example.com"); found == nil || found.ID != alice.ID {
		t.Error("new email should resolve to the updated person")
	}
}

func TestMemoryPersonStore_Update_DoesNotTouchCredentialHashOrAttendance(t *testing.T) {
	s := NewMemoryPersonStore()
	ctx := context.Background()

	draft := validPersonDraft("alice@example.com")
	draft.AttendanceLog = []model.AttendanceRecord{{Status: model.AttendancePresent}}
	created, _ := s.CreatePerson(ctx, draft)

	name := "Alice Renamed"
	updated, err := s.UpdatePerson(ctx, created.ID, model.PersonPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdatePerson() error = %v", err)
	}

	if updated.CredentialHash != draft.CredentialHash {
		t.Error("CredentialHash should not change via patch")
	}
	if len(updated.AttendanceLog) != 1 {
		t.Errorf("AttendanceLog length = %d, want 1", len(updated.AttendanceLog))
	}
}

func TestMemoryPersonStore_Delete_FreesEmail(t *testing.T) {
	s := NewMemoryPersonStore()
	ctx := context.Background()

	created, _ := s.CreatePerson(ctx, validPersonDraft("alice@example.com"))

	if err := s.DeletePerson(ctx, created.ID); err != nil {
		t.Fatalf("DeletePerson() error = %v", err)
	}

	// 削除後は同じメールアドレスで再登録できる
	if _, err := s.CreatePerson(ctx, validPersonDraft("alice@example.com")); err != nil {
		t.Errorf("re-register after delete failed: %v", err)
	}
}

func TestMemoryPersonStore_Snapshot_RegistrationOrder(t *testing.T) {
	s := NewMemoryPersonStore()
	ctx := context.Background()

	first, _ := s.CreatePerson(ctx, validPersonDraft("a@example.com"))
	second, _ := s.CreatePerson(ctx, validPersonDraft("b@example.com"))

	snapshot := s.SnapshotPersons(ctx)
	if len(snapshot) != 2 {
		t.Fatalf("len(snapshot) = %d, want 2", len(snapshot))
	}
	if snapshot[0].ID != first.ID || snapshot[1].ID != second.ID {
		t.Error("snapshot should be in registration order")
	}
}

func TestMemoryPersonStore_Get_ReturnsIndependentCopy(t *testing.T) {
	s := NewMemoryPersonStore()
	ctx := context.Background()

	age := 30
	draft := validPersonDraft("alice@example.com")
	draft.Age = &age
	created, _ := s.CreatePerson(ctx, draft)

	got, _ := s.GetPerson(ctx, created.ID)
	got.Name = "tampered"
	*got.Age = -1

	again, _ := s.GetPerson(ctx, created.ID)
	if again.Name != "Test User" {
		t.Errorf("store state mutated through returned copy: name = %q", again.Name)
	}
	if *again.Age != 30 {
		t.Errorf("store state mutated through returned age pointer: %v", *again.Age)
	}
}
