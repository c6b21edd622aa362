package validation

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

var phoneRe = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

func NormalizePhone(phone string) string {
	return strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
}

func ValidatePhone(phone string) bool {
	return phoneRe.MatchString(NormalizePhone(phone))
}

func PasswordMinLength() int {
	minStr := os.Getenv("PASSWORD_MIN_LENGTH")
	if minStr == "" {
		return 8
	}
	min, err := strconv.Atoi(minStr)
	if err != nil || min < 6 {
		return 8
	}
	return min
}

func ValidatePassword(password string) bool {
	return len(password) >= PasswordMinLength()
}

func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 4000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 4000
	}
	return max
}

func ValidateMessageContent(content string) bool {
	content = strings.TrimSpace(content)
	return content != "" && len(content) <= MaxMessageLength()
}
