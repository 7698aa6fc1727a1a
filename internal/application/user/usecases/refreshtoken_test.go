package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/internal/domain/user"
	"veil/internal/shared/errors"
)

func TestRefreshTokenUseCase_IssuesFreshToken(t *testing.T) {
	userRepo := newFakeUserRepo(&user.User{ID: 7, Email: "a@example.com", Status: user.StatusActive})
	issuer := &fakeIssuer{}
	uc := NewRefreshTokenUseCase(userRepo, &fakeVerifier{userID: 7}, issuer, testLogger())

	result, err := uc.Execute(context.Background(), RefreshTokenCommand{Token: "current-token"})
	require.NoError(t, err)
	assert.Equal(t, "token-for-7", result.Token)
	assert.Equal(t, int64(3600), result.ExpiresIn)
	assert.Equal(t, 1, issuer.issued)
}

func TestRefreshTokenUseCase_Rejections(t *testing.T) {
	active := &user.User{ID: 7, Email: "a@example.com", Status: user.StatusActive}
	disabled := &user.User{ID: 8, Email: "b@example.com", Status: user.StatusDisabled}

	tests := []struct {
		name     string
		verifier *fakeVerifier
		cmd      RefreshTokenCommand
		wantType errors.ErrorType
	}{
		{
			name:     "empty token",
			verifier: &fakeVerifier{userID: 7},
			cmd:      RefreshTokenCommand{},
			wantType: errors.ErrorTypeUnauthorized,
		},
		{
			name:     "invalid token",
			verifier: &fakeVerifier{err: assert.AnError},
			cmd:      RefreshTokenCommand{Token: "garbage"},
			wantType: errors.ErrorTypeUnauthorized,
		},
		{
			name:     "deleted account",
			verifier: &fakeVerifier{userID: 99},
			cmd:      RefreshTokenCommand{Token: "orphan-token"},
			wantType: errors.ErrorTypeUnauthorized,
		},
		{
			name:     "disabled account",
			verifier: &fakeVerifier{userID: 8},
			cmd:      RefreshTokenCommand{Token: "disabled-token"},
			wantType: errors.ErrorTypeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewRefreshTokenUseCase(newFakeUserRepo(active, disabled), tt.verifier, &fakeIssuer{}, testLogger())

			_, err := uc.Execute(context.Background(), tt.cmd)
			require.Error(t, err)

			appErr, ok := err.(*errors.AppError)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, appErr.Type)
		})
	}
}
