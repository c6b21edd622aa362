package service

import (
	"os"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	defer os.Unsetenv("JWT_SECRET")

	userRepo := NewMockUserRepository()
	svc := NewAuthService(userRepo)

	resp, err := svc.Register(RegisterInput{
		Phone:     "+8801712345678",
		Password:  "longenough",
		FirstName: "Asha",
		LastName:  "Patel",
		District:  "Jessore",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if resp.Token == "" {
		t.Errorf("expected a signed token")
	}
	if resp.User.FirstName != "Asha" {
		t.Errorf("user response incomplete: %+v", resp.User)
	}

	// Duplicate phone is rejected.
	if _, err := svc.Register(RegisterInput{Phone: "+8801712345678", Password: "longenough"}); err == nil {
		t.Errorf("duplicate phone must be rejected")
	}

	if _, err := svc.Login(LoginInput{Phone: "+8801712345678", Password: "longenough"}); err != nil {
		t.Errorf("Login error: %v", err)
	}
	if _, err := svc.Login(LoginInput{Phone: "+8801712345678", Password: "wrong"}); err == nil {
		t.Errorf("wrong password must be rejected")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(NewMockUserRepository())

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"Bad phone", RegisterInput{Phone: "nope", Password: "longenough"}},
		{"Short password", RegisterInput{Phone: "+8801712345678", Password: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(tt.input); !IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}
