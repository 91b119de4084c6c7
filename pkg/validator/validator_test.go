package validator

import "testing"

type scheduleRequest struct {
	Schedule map[string][]string `validate:"omitempty,dive,keys,weekday,endkeys,dive,hhmm_range"`
	TimeZone string              `validate:"omitempty,timezone"`
	Duration int                 `validate:"gt=0"`
}

func TestValidateCustomTags(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		req     scheduleRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  scheduleRequest{Schedule: map[string][]string{"monday": {"09:00-12:00"}}, TimeZone: "Europe/Berlin", Duration: 30},
		},
		{
			name:    "bad weekday",
			req:     scheduleRequest{Schedule: map[string][]string{"mon": {"09:00-12:00"}}, Duration: 30},
			wantErr: true,
		},
		{
			name:    "bad range",
			req:     scheduleRequest{Schedule: map[string][]string{"monday": {"12:00-09:00"}}, Duration: 30},
			wantErr: true,
		},
		{
			name:    "bad time zone",
			req:     scheduleRequest{TimeZone: "Mars/Olympus", Duration: 30},
			wantErr: true,
		},
		{
			name:    "non-positive duration",
			req:     scheduleRequest{Duration: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && len(v.FormatValidationErrors(err)) == 0 {
				t.Error("FormatValidationErrors() returned no messages")
			}
		})
	}
}
