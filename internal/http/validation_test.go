package http

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationSample struct {
	Slot   string `json:"slot" binding:"omitempty,slot"`
	Date   string `json:"date" binding:"omitempty,isodate"`
	Status string `json:"status" binding:"omitempty,bookstatus"`
	Role   string `json:"role" binding:"omitempty,userrole"`
}

func TestRegisterValidators_CustomRules(t *testing.T) {
	RegisterValidators()
	RegisterValidators()

	tests := []struct {
		name    string
		sample  validationSample
		wantErr string
	}{
		{"all valid", validationSample{Slot: "morning", Date: "2025-03-10", Status: "maintenance", Role: "staff"}, ""},
		{"empty is allowed", validationSample{}, ""},
		{"bad slot", validationSample{Slot: "noon"}, "slot"},
		{"bad date", validationSample{Date: "2025-02-30"}, "date"},
		{"date with time", validationSample{Date: "2025-03-10T10:00:00Z"}, "date"},
		{"bad status", validationSample{Status: "stolen"}, "status"},
		{"bad role", validationSample{Role: "root"}, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.sample)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			details := validationDetails(err)
			assert.Contains(t, details, tt.wantErr)
		})
	}
}

func TestValidationDetails_NonFieldError(t *testing.T) {
	details := validationDetails(assert.AnError)
	assert.Equal(t, map[string]string{"body": assert.AnError.Error()}, details)
}

func TestRegisterValidators_DisallowsUnknownFields(t *testing.T) {
	RegisterValidators()
	assert.True(t, binding.EnableDecoderDisallowUnknownFields)
}
