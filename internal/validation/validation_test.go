package validation

import (
	"os"
	"strings"
	"testing"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"Bangladeshi mobile", "+8801712345678", true},
		{"Without plus", "01712345678", true},
		{"With spaces", "+880 1712 345678", true},
		{"Too short", "12345", false},
		{"Letters", "+880abc45678", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePhone(tt.phone); got != tt.want {
				t.Errorf("ValidatePhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	os.Unsetenv("PASSWORD_MIN_LENGTH")

	if ValidatePassword("short") {
		t.Errorf("5-char password should fail default minimum")
	}
	if !ValidatePassword("longenough") {
		t.Errorf("10-char password should pass default minimum")
	}

	os.Setenv("PASSWORD_MIN_LENGTH", "12")
	defer os.Unsetenv("PASSWORD_MIN_LENGTH")
	if ValidatePassword("elevenchars") {
		t.Errorf("11-char password should fail raised minimum")
	}
}

func TestValidateMessageContent(t *testing.T) {
	os.Unsetenv("MAX_MESSAGE_LENGTH")

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"Normal", "Hello there", true},
		{"Empty", "", false},
		{"Whitespace only", "   \n\t", false},
		{"At limit", strings.Repeat("a", 4000), true},
		{"Over limit", strings.Repeat("a", 4001), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateMessageContent(tt.content); got != tt.want {
				t.Errorf("ValidateMessageContent len=%d = %v, want %v", len(tt.content), got, tt.want)
			}
		})
	}
}
