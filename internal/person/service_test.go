package person

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/haulman/internal/model"
	"github.com/hitoshi/haulman/internal/store"
	"github.com/hitoshi/haulman/internal/token"
)

func roleOf(r model.Role) *model.Role {
	return &r
}

func seedPerson(t *testing.T, s *store.MemoryPersonStore, email string, role model.Role) *model.Person {
	t.Helper()
	p, err := s.CreatePerson(context.Background(), model.PersonDraft{
		Name:           "Test User",
		Email:          email,
		CredentialHash: "digest",
		Role:           role,
	})
	if err != nil {
		t.Fatalf("seed CreatePerson() error = %v", err)
	}
	return p
}

func TestService_ListPersons_RoleFilter(t *testing.T) {
	st := store.NewMemoryPersonStore()
	seedPerson(t, st, "admin@tms.com", model.RoleAdmin)
	seedPerson(t, st, "a@tms.com", model.RoleEmployee)
	seedPerson(t, st, "b@tms.com", model.RoleEmployee)
	svc := NewService(st)

	employee := model.RoleEmployee
	result, err := svc.ListPersons(context.Background(), nil, ListParams{Role: &employee})
	if err != nil {
		t.Fatalf("ListPersons() error = %v", err)
	}
	if result.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", result.TotalCount)
	}
	for _, p := range result.Items {
		if p.Role != model.RoleEmployee {
			t.Errorf("role = %q, want EMPLOYEE", p.Role)
		}
	}
}

func TestService_ListPersons_SortByName(t *testing.T) {
	st := store.NewMemoryPersonStore()
	ctx := context.Background()
	for _, seedData := range []struct{ name, email string }{
		{"Charlie", "c@tms.com"},
		{"Alice", "a@tms.com"},
		{"Bob", "b@tms.com"},
	} {
		if _, err := st.CreatePerson(ctx, model.PersonDraft{
			Name: seedData.name, Email: seedData.email,
			CredentialHash: "digest", Role: model.RoleEmployee,
		}); err != nil {
			t.Fatalf("seed error = %v", err)
		}
	}
	svc := NewService(st)

	result, err := svc.ListPersons(ctx, nil, ListParams{SortBy: "name", SortOrder: "ASC"})
	if err != nil {
		t.Fatalf("ListPersons() error = %v", err)
	}
	names := []string{}
	for _, p := range result.Items {
		names = append(names, p.Name)
	}
	if names[0] != "Alice" || names[1] != "Bob" || names[2] != "Charlie" {
		t.Errorf("names = %v, want alphabetical", names)
	}
}

func TestService_Me(t *testing.T) {
	st := store.NewMemoryPersonStore()
	created := seedPerson(t, st, "me@tms.com", model.RoleEmployee)
	svc := NewService(st)
	ctx := context.Background()

	t.Run("nil claims is unauthenticated", func(t *testing.T) {
		_, err := svc.Me(ctx, nil)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthenticated {
			t.Errorf("error = %v, want UNAUTHENTICATED", err)
		}
	})

	t.Run("valid claims return the subject", func(t *testing.T) {
		got, err := svc.Me(ctx, &token.Claims{PersonID: created.ID, Role: created.Role})
		if err != nil {
			t.Fatalf("Me() error = %v", err)
		}
		if got.ID != created.ID {
			t.Errorf("ID = %s, want %s", got.ID, created.ID)
		}
	})

	t.Run("claims for a deleted person are not found", func(t *testing.T) {
		_, err := svc.Me(ctx, &token.Claims{PersonID: "gone", Role: model.RoleEmployee})
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePersonNotFound {
			t.Errorf("error = %v, want PERSON_NOT_FOUND", err)
		}
	})
}

func TestService_UpdatePerson_AdminOnly(t *testing.T) {
	st := store.NewMemoryPersonStore()
	created := seedPerson(t, st, "target@tms.com", model.RoleEmployee)
	svc := NewService(st)
	ctx := context.Background()

	name := "Renamed"

	_, err := svc.UpdatePerson(ctx, roleOf(model.RoleManager), created.ID, model.PersonPatch{Name: &name})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("manager update error = %v, want FORBIDDEN", err)
	}

	updated, err := svc.UpdatePerson(ctx, roleOf(model.RoleAdmin), created.ID, model.PersonPatch{Name: &name})
	if err != nil {
		t.Fatalf("admin UpdatePerson() error = %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", updated.Name)
	}
}

func TestService_DeletePerson_AdminOnly(t *testing.T) {
	st := store.NewMemoryPersonStore()
	created := seedPerson(t, st, "target@tms.com", model.RoleEmployee)
	svc := NewService(st)
	ctx := context.Background()

	_, err := svc.DeletePerson(ctx, nil, created.ID)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthenticated {
		t.Errorf("anonymous delete error = %v, want UNAUTHENTICATED", err)
	}

	ok, err := svc.DeletePerson(ctx, roleOf(model.RoleAdmin), created.ID)
	if err != nil {
		t.Fatalf("admin DeletePerson() error = %v", err)
	}
	if !ok {
		t.Error("DeletePerson() = false, want true")
	}
}

func TestService_GetPerson_AnonymousAllowed(t *testing.T) {
	st := store.NewMemoryPersonStore()
	created := seedPerson(t, st, "x@tms.com", model.RoleEmployee)
	svc := NewService(st)

	got, err := svc.GetPerson(context.Background(), nil, created.ID)
	if err != nil {
		t.Fatalf("GetPerson() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %s, want %s", got.ID, created.ID)
	}
}
