package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/billingkit/authkit/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases and trims", "  User@Example.COM  ", "user@example.com"},
		{"collapses consecutive dots", "first..last@example.com", "first.last@example.com"},
		{"strips leading and trailing dots", ".user.@example.com", "user@example.com"},
		{"plus tags preserved", "User+Billing@Example.com", "user+billing@example.com"},
		{"not an address passes through", "not-an-email", "not-an-email"},
		{"double at passes through", "a@b@c", "a@b@c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.NormalizeEmail(tt.input))
		})
	}
}
