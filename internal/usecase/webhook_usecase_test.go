package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// Validation happens before any remote call, so a nil session is safe here.

func TestRegisterWebhookValidation(t *testing.T) {
	u := NewWebhookUsecase(nil, zap.NewNop())

	tests := []struct {
		name string
		req  *RegisterWebhookRequest
		want string
	}{
		{
			name: "missing name",
			req:  &RegisterWebhookRequest{URL: "https://cb.example.com", Scope: "ACCOUNT", Events: []string{"AGREEMENT_CREATED"}},
			want: "name is required",
		},
		{
			name: "missing url",
			req:  &RegisterWebhookRequest{Name: "wh", Scope: "ACCOUNT", Events: []string{"AGREEMENT_CREATED"}},
			want: "url is required",
		},
		{
			name: "bad scope",
			req:  &RegisterWebhookRequest{Name: "wh", URL: "https://cb.example.com", Scope: "PLANET", Events: []string{"AGREEMENT_CREATED"}},
			want: "scope must be one of",
		},
		{
			name: "no events",
			req:  &RegisterWebhookRequest{Name: "wh", URL: "https://cb.example.com", Scope: "ACCOUNT"},
			want: "at least one event is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.Register(context.Background(), tt.req)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestUnregisterWebhookRequiresID(t *testing.T) {
	u := NewWebhookUsecase(nil, zap.NewNop())
	err := u.Unregister(context.Background(), "")
	assert.ErrorContains(t, err, "webhook id is required")
}
