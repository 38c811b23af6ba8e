package services

import (
	"testing"

	"github.com/tahcohcat/liferpg-web/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestUserServiceAuthenticates(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	svc, err := NewUserService(map[string]string{"Ada": "plain-pw", "bob": string(hash)})
	if err != nil {
		t.Fatal(err)
	}

	if u, err := svc.AuthenticateUser(&models.LoginRequest{Username: "ada", Password: "plain-pw"}); err != nil || u.Username != "ada" {
		t.Fatalf("plain password login: %+v %v", u, err)
	}
	if _, err := svc.AuthenticateUser(&models.LoginRequest{Username: "bob", Password: "s3cret"}); err != nil {
		t.Fatalf("hashed password login: %v", err)
	}
	if _, err := svc.AuthenticateUser(&models.LoginRequest{Username: "bob", Password: "wrong"}); err == nil {
		t.Fatalf("wrong password accepted")
	}
	if _, err := svc.AuthenticateUser(&models.LoginRequest{Username: "eve", Password: "x"}); err == nil {
		t.Fatalf("unknown user accepted")
	}
	if got := svc.Usernames(); len(got) != 2 || got[0] != "ada" {
		t.Fatalf("usernames=%v", got)
	}
}

func TestUserServiceRejectsBadAccounts(t *testing.T) {
	for _, accounts := range []map[string]string{
		{"../etc": "pw"},
		{"ada": ""},
		{"": "pw"},
	} {
		if _, err := NewUserService(accounts); err == nil {
			t.Fatalf("accounts %v should be rejected", accounts)
		}
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := NewUserService(map[string]string{"ada": "old-pw"})
	if err := svc.ChangePassword("ada", "bad", "new-pw"); err == nil {
		t.Fatalf("wrong current password accepted")
	}
	if err := svc.ChangePassword("ada", "old-pw", "new-pw"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AuthenticateUser(&models.LoginRequest{Username: "ada", Password: "new-pw"}); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
