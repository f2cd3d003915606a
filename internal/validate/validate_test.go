package validate

import (
	"testing"

	"github.com/evcraddock/domaindeck/internal/apperr"
)

type testInput struct {
	Text       string `json:"text" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Role       string `json:"role" validate:"omitempty,oneof=superadmin collaborator"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   testInput
		wantErr string
	}{
		{
			name:  "valid",
			input: testInput{Text: "hi", ReceiverID: "u2"},
		},
		{
			name:    "missing text",
			input:   testInput{ReceiverID: "u2"},
			wantErr: "text is required",
		},
		{
			name:    "missing receiver",
			input:   testInput{Text: "hi"},
			wantErr: "receiverId is required",
		},
		{
			name:    "bad email",
			input:   testInput{Text: "hi", ReceiverID: "u2", Email: "nope"},
			wantErr: "email must be a valid email address",
		},
		{
			name:    "bad role",
			input:   testInput{Text: "hi", ReceiverID: "u2", Role: "owner"},
			wantErr: "role has an unsupported value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if got := apperr.PublicMessage(err); got != tt.wantErr {
				t.Errorf("message = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestFieldsReportsAll(t *testing.T) {
	fields := New().Fields(&testInput{})
	if len(fields) != 2 {
		t.Fatalf("got %d field errors, want 2: %+v", len(fields), fields)
	}
	if fields[0].Field != "text" || fields[1].Field != "receiverId" {
		t.Errorf("fields = %+v", fields)
	}
}
