package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
	"github.com/aryan0dhankhar/stockroom/internal/security"
)

func newTestInventoryService() (*InventoryService, *memInventoryRepo) {
	repo := newMemInventoryRepo()
	return NewInventoryService(repo, security.NewAuthorizer(nil), nil), repo
}

func TestInventoryOwnership(t *testing.T) {
	s, _ := newTestInventoryService()
	ctx := context.Background()
	u1, u2 := newUser("u1@example.com"), newUser("u2@example.com")

	inv, err := s.Create(ctx, u1, domain.InventoryInput{Name: "Paints", NotificationEmail: "a@b.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	got, err := s.GetByID(ctx, u1, inv.ID)
	if err != nil {
		t.Fatalf("owner get failed: %v", err)
	}
	if got.Name != "Paints" || got.NotificationEmail != "a@b.com" || got.Description != "" || got.OwnerID != u1.ID {
		t.Fatalf("unexpected inventory: %+v", got)
	}
	if _, err := s.GetByID(ctx, u2, inv.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestInventoryCreateValidation(t *testing.T) {
	s, _ := newTestInventoryService()
	for name, in := range map[string]domain.InventoryInput{
		"blank name":    {Name: "", NotificationEmail: "a@b.com"},
		"missing email": {Name: "Shelf"},
		"bad email":     {Name: "Shelf", NotificationEmail: "not-an-email"},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Create(context.Background(), newUser("u@example.com"), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestInventoryLengthLimitsCountCharacters(t *testing.T) {
	s, _ := newTestInventoryService()
	ctx := context.Background()
	owner := newUser("u@example.com")

	description := strings.Repeat("ü", maxDescriptionLength)
	in := domain.InventoryInput{Name: strings.Repeat("ü", maxInventoryNameLength), Description: &description, NotificationEmail: "a@b.com"}
	if _, err := s.Create(ctx, owner, in); err != nil {
		t.Fatalf("multibyte values at the limit should be accepted: %v", err)
	}

	longDescription := description + "ü"
	for name, in := range map[string]domain.InventoryInput{
		"name":        {Name: strings.Repeat("ü", maxInventoryNameLength+1), NotificationEmail: "a@b.com"},
		"description": {Name: "Shelf", Description: &longDescription, NotificationEmail: "a@b.com"},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Create(ctx, owner, in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error one character over the limit, got %v", err)
			}
		})
	}
}

func TestInventoryUpdateDefaultsDescription(t *testing.T) {
	s, _ := newTestInventoryService()
	ctx := context.Background()
	owner := newUser("u1@example.com")
	desc := "back room"
	inv, _ := s.Create(ctx, owner, domain.InventoryInput{Name: "Shelf", Description: &desc, NotificationEmail: "a@b.com"})
	if inv.Description != "back room" {
		t.Fatalf("expected description to be stored, got %q", inv.Description)
	}

	updated, err := s.Update(ctx, owner, inv.ID, domain.InventoryInput{Name: "Shelf 2", NotificationEmail: "c@d.com"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Description != "" || updated.Name != "Shelf 2" || updated.NotificationEmail != "c@d.com" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}

func TestInventoryPatch(t *testing.T) {
	s, repo := newTestInventoryService()
	ctx := context.Background()
	owner := newUser("u1@example.com")
	desc := "front"
	inv, _ := s.Create(ctx, owner, domain.InventoryInput{Name: "Bin", Description: &desc, NotificationEmail: "a@b.com"})

	patched, err := s.Patch(ctx, owner, inv.ID, domain.InventoryPatch{NotificationEmail: domain.Set("z@y.com")})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if patched.Name != "Bin" || patched.Description != "front" || patched.NotificationEmail != "z@y.com" {
		t.Fatalf("patch touched other fields: %+v", patched)
	}

	cleared, err := s.Patch(ctx, owner, inv.ID, domain.InventoryPatch{Description: domain.Clear[string]()})
	if err != nil {
		t.Fatalf("patch clear failed: %v", err)
	}
	if cleared.Description != "" {
		t.Fatalf("expected description cleared, got %q", cleared.Description)
	}

	if _, err := s.Patch(ctx, owner, inv.ID, domain.InventoryPatch{NotificationEmail: domain.Set("broken")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	before := repo.updates
	stored, _ := repo.GetByID(ctx, inv.ID)
	if _, err := s.Patch(ctx, owner, inv.ID, domain.InventoryPatch{}); err != nil {
		t.Fatalf("empty patch failed: %v", err)
	}
	after, _ := repo.GetByID(ctx, inv.ID)
	if repo.updates != before || *after != *stored {
		t.Fatalf("empty patch must leave the inventory untouched")
	}
}

func TestInventoryDeleteNotFoundBeforeUnauthorized(t *testing.T) {
	s, _ := newTestInventoryService()
	ctx := context.Background()
	owner := newUser("u1@example.com")
	inv, _ := s.Create(ctx, owner, domain.InventoryInput{Name: "Bin", NotificationEmail: "a@b.com"})

	if err := s.Delete(ctx, newUser("u2@example.com"), inv.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := s.Delete(ctx, owner, inv.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.Delete(ctx, newUser("u2@example.com"), inv.ID); !errors.Is(err, domain.ErrInventoryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
