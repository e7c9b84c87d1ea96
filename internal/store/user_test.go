package store

import (
	"testing"
)

func TestUserStoreCreateAndAuth(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	t.Cleanup(func() { cleanUsers(t, db, "auth-test@agririse.test") })

	u, err := users.Create("auth-test@agririse.test", "s3cret-pass", "Auth Test")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.PasswordHash == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}
	if u.TOTPEnabled {
		t.Error("new user has 2FA enabled")
	}
	if !u.Needs2FASetup() {
		t.Error("new user should need 2FA setup")
	}

	if !users.CheckPassword(u, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if users.CheckPassword(u, "wrong-pass") {
		t.Error("wrong password accepted")
	}

	found, err := users.FindByEmail("auth-test@agririse.test")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found == nil || found.ID != u.ID {
		t.Fatalf("FindByEmail returned %+v", found)
	}
}

func TestUserStoreFindUnknown(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	found, err := users.FindByEmail("nobody@agririse.test")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for unknown email, got %+v", found)
	}
}

func TestUserStoreTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	t.Cleanup(func() { cleanUsers(t, db, "totp-test@agririse.test") })

	u, err := users.Create("totp-test@agririse.test", "s3cret-pass", "TOTP Test")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := users.SetTOTPSecret(u.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	if err := users.EnableTOTP(u.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}

	u, err = users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !u.TOTPEnabled || u.TOTPSecret == nil {
		t.Fatal("2FA not active after enable")
	}
	if u.Needs2FASetup() {
		t.Error("enabled user still reported as needing setup")
	}

	if err := users.ResetTOTP(u.ID); err != nil {
		t.Fatalf("ResetTOTP: %v", err)
	}
	u, err = users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if u.TOTPEnabled || u.TOTPSecret != nil {
		t.Error("2FA still active after reset")
	}
}
