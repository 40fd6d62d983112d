package userservice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/blogapi/internal/common"
)

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		name    string
		email   string
		wantErr map[string]string
	}{
		{
			name:  "valid email",
			email: "jane@example.com",
		},
		{
			name:    "empty email",
			email:   "",
			wantErr: map[string]string{"email": "must be provided"},
		},
		{
			name:    "missing domain",
			email:   "jane@",
			wantErr: map[string]string{"email": "must be a valid email address"},
		},
		{
			name:    "missing at sign",
			email:   "jane.example.com",
			wantErr: map[string]string{"email": "must be a valid email address"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validateEmail(v, tc.email)

			if tc.wantErr == nil {
				assert.True(t, v.Valid())
			} else {
				assert.Equal(t, tc.wantErr, v.Errors)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "valid password", password: "password123", valid: true},
		{name: "empty password", password: "", valid: false},
		{name: "too short", password: "pass", valid: false},
		{name: "too long", password: strings.Repeat("a", 73), valid: false},
		{name: "exactly 72 characters", password: strings.Repeat("a", 72), valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validatePassword(v, tc.password)

			assert.Equal(t, tc.valid, v.Valid())
		})
	}
}

func TestValidateName(t *testing.T) {
	v := common.NewValidator()
	validateName(v, "", "first_name")
	assert.Equal(t, map[string]string{"first_name": "must be provided"}, v.Errors)

	v = common.NewValidator()
	validateName(v, strings.Repeat("a", 51), "last_name")
	assert.Equal(t, map[string]string{"last_name": "must not be more than 50 characters long"}, v.Errors)
}
