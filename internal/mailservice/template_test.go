package mailservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTemplate(t *testing.T) {
	template := &Template{}

	testCases := []struct {
		name         string
		templateName string
		data         any
		expectedErr  bool
	}{
		{
			name:         "welcome email",
			templateName: "welcome_email.html",
			data: struct {
				Name string
			}{
				Name: "Jane",
			},
			expectedErr: false,
		},
		{
			name:         "unknown template",
			templateName: "missing_template.html",
			data:         nil,
			expectedErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, p, h, err := template.ParseTemplate(tc.templateName, tc.data)
			assert.Equal(t, tc.expectedErr, err != nil)

			if err == nil {
				assert.Contains(t, s.String(), "Welcome")
				assert.Contains(t, p.String(), "Jane")
				assert.Contains(t, h.String(), "Jane")
			}
		})
	}
}
