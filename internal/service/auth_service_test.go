package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/authz"
	"alcyxob/fitness-coach/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := NewAuthService(f.users, testSecret, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Dora  ", " Dora@Example.com ", "secret1", domain.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "Dora", user.Name)
	assert.Equal(t, "dora@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	token, logged, err := svc.Login(ctx, "DORA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Empty(t, logged.PasswordHash)

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleStudent, claims.Role)
	assert.Equal(t, TokenIssuer, claims.Issuer)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := NewAuthService(f.users, testSecret, time.Hour)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     domain.Role
		field    string
	}{
		{"duplicate email", "ana@example.com", "secret1", domain.RoleStudent, "email"},
		{"bad email", "not-an-email", "secret1", domain.RoleStudent, "email"},
		{"short password", "new@example.com", "123", domain.RoleStudent, "password"},
		{"unknown role", "new@example.com", "secret1", domain.Role("ADMIN"), "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, "Someone", tt.email, tt.password, tt.role)
			verr := errorAs[*domain.ValidationError](t, err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t, authz.DefaultPolicy)
	svc := NewAuthService(f.users, testSecret, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Eva", "eva@example.com", "secret1", domain.RoleTrainer)
	require.NoError(t, err)

	for _, tc := range []struct{ email, password string }{
		{"eva@example.com", "wrong-password"},
		{"nobody@example.com", "secret1"},
		{"", ""},
	} {
		_, _, err := svc.Login(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	}
}
