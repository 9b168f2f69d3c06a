package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "community/internal/domain/errors"
	"community/internal/errors"
)

type signUpRequest struct {
	Email    string   `json:"email" validate:"required,email,min=10,max=50"`
	Nickname string   `json:"nickname" validate:"required,min=2,max=15,nickname"`
	Keys     []string `json:"imageKeys" validate:"max=2,dive,imagekey"`
}

func TestCustomValidator_Validate(t *testing.T) {
	v := New()

	tests := []struct {
		name       string
		req        signUpRequest
		wantFields []string
	}{
		{
			name: "valid korean nickname",
			req:  signUpRequest{Email: "writer@example.com", Nickname: "글쓴이_01", Keys: []string{"images/posts/3/1700000000_abcd1234.png"}},
		},
		{
			name:       "nickname with space",
			req:        signUpRequest{Email: "writer@example.com", Nickname: "two words"},
			wantFields: []string{"nickname:nickname"},
		},
		{
			name:       "short email and long nickname",
			req:        signUpRequest{Email: "a@b.co", Nickname: "abcdefghijklmnop"},
			wantFields: []string{"email:min", "nickname:max"},
		},
		{
			name:       "foreign image key",
			req:        signUpRequest{Email: "writer@example.com", Nickname: "writer", Keys: []string{"../etc/passwd"}},
			wantFields: []string{"imageKeys[0]:imagekey"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			for _, field := range tt.wantFields {
				assert.Contains(t, appErr.Details(), field)
			}
		})
	}
}
