package publisher

import (
	"testing"

	apperrors "github.com/kbukum/techdocs/errors"
)

func TestValidateKeys(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"default/component/payments", true},
		{"index.html", true},
		{"a/b/c.d.e", true},
		{"..hidden/ok", true},
		{"", false},
		{"/abs", false},
		{"a/../b", false},
		{"..", false},
		{"./a", false},
		{"a//b", false},
		{"a/", false},
		{`a\b`, false},
		{"a\x00b", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			errEntity := ValidateEntityKey(tt.key)
			errPath := ValidateRelativePath(tt.key)
			if tt.valid {
				if errEntity != nil || errPath != nil {
					t.Errorf("validate(%q) = %v, %v; want valid", tt.key, errEntity, errPath)
				}
				return
			}
			if !apperrors.IsInvalidInput(errEntity) || !apperrors.IsInvalidInput(errPath) {
				t.Errorf("validate(%q) = %v, %v; want INVALID_INPUT", tt.key, errEntity, errPath)
			}
		})
	}
}
