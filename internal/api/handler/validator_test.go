package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"required", &loginRequest{Password: "x"}, "username is required"},
		{"max", &loginRequest{Username: strings.Repeat("u", 65), Password: "x"}, "username must be at most 64 characters"},
		{"email", &changeEmailRequest{Email: "nope"}, "email must be a valid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}

	if err := v.Validate(&loginRequest{Username: "alice", Password: "x"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}
