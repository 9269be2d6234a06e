package users_test

import (
	"errors"
	"testing"

	"watchdeck/models"
	"watchdeck/services/users"
)

func TestServiceInitialisesDefaultUser(t *testing.T) {
	svc, err := users.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	list := svc.List()
	if len(list) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(list))
	}

	if list[0].ID != models.DefaultUserID {
		t.Fatalf("expected default user id %q, got %q", models.DefaultUserID, list[0].ID)
	}
	if list[0].Name != models.DefaultUserName {
		t.Fatalf("expected default user name %q, got %q", models.DefaultUserName, list[0].Name)
	}
}

func TestServiceCreateRenameAndDelete(t *testing.T) {
	svc, err := users.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create("Evening Watcher")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	if created.ID == "" {
		t.Fatalf("expected created user to have id")
	}

	renamed, err := svc.Rename(created.ID, "Night Owl")
	if err != nil {
		t.Fatalf("rename returned error: %v", err)
	}

	if renamed.Name != "Night Owl" {
		t.Fatalf("expected renamed user to have updated name, got %q", renamed.Name)
	}

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}

	if svc.Exists(created.ID) {
		t.Fatalf("expected user to be deleted")
	}
}

func TestDeleteLastUserFails(t *testing.T) {
	svc, err := users.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	list := svc.List()
	if len(list) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(list))
	}

	if err := svc.Delete(list[0].ID); err == nil {
		t.Fatal("expected delete to fail for last remaining user")
	}
}

func TestPinLifecycle(t *testing.T) {
	svc, err := users.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	user := svc.List()[0]

	if _, err := svc.SetPin(user.ID, "12"); !errors.Is(err, users.ErrPinTooShort) {
		t.Fatalf("expected ErrPinTooShort, got %v", err)
	}

	updated, err := svc.SetPin(user.ID, "4812")
	if err != nil {
		t.Fatalf("set pin returned error: %v", err)
	}
	if !updated.HasPin() {
		t.Fatal("expected user to have a pin after SetPin")
	}

	if err := svc.VerifyPin(user.ID, "4812"); err != nil {
		t.Fatalf("expected correct pin to verify, got %v", err)
	}
	if err := svc.VerifyPin(user.ID, "0000"); !errors.Is(err, users.ErrPinInvalid) {
		t.Fatalf("expected ErrPinInvalid, got %v", err)
	}

	cleared, err := svc.ClearPin(user.ID)
	if err != nil {
		t.Fatalf("clear pin returned error: %v", err)
	}
	if cleared.HasPin() {
		t.Fatal("expected pin to be cleared")
	}
}
