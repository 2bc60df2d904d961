package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/gridiron/go/internal/apperrors"
)

func TestValidateTeamSlots(t *testing.T) {
	tests := []struct {
		name    string
		slots   int
		wantErr bool
	}{
		{name: "minimum allowed", slots: 4, wantErr: false},
		{name: "middle of range", slots: 12, wantErr: false},
		{name: "maximum allowed", slots: 20, wantErr: false},
		{name: "odd count rejected", slots: 7, wantErr: true},
		{name: "zero rejected", slots: 0, wantErr: true},
		{name: "above range rejected", slots: 22, wantErr: true},
		{name: "negative rejected", slots: -4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTeamSlots(tt.slots)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePlayoffTeams(t *testing.T) {
	require.NoError(t, ValidatePlayoffTeams(4))
	require.NoError(t, ValidatePlayoffTeams(6))

	for _, n := range []int{0, 2, 5, 8} {
		err := ValidatePlayoffTeams(n)
		require.Error(t, err, "playoff count %d", n)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	}
}

func TestValidatePasswordComplexity(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		want []string
	}{
		{
			name: "valid password",
			pw:   "Abc12345",
			want: nil,
		},
		{
			name: "valid at max length",
			pw:   "Abc123456789",
			want: nil,
		},
		{
			name: "short lowercase reports all violations at once",
			pw:   "abc",
			want: []string{
				PasswordViolationLength,
				PasswordViolationUppercase,
				PasswordViolationDigit,
			},
		},
		{
			name: "too long",
			pw:   "Abc1234567890",
			want: []string{PasswordViolationLength},
		},
		{
			name: "missing lowercase",
			pw:   "ABC12345",
			want: []string{PasswordViolationLowercase},
		},
		{
			name: "symbols rejected",
			pw:   "Abc123!5",
			want: []string{PasswordViolationCharset},
		},
		{
			name: "empty password",
			pw:   "",
			want: []string{
				PasswordViolationLength,
				PasswordViolationUppercase,
				PasswordViolationLowercase,
				PasswordViolationDigit,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePasswordComplexity(tt.pw)
			assert.Equal(t, tt.want, got)
		})
	}
}
