package errors

import (
	"strings"
	"testing"
)

func TestValidateDocumentName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "pipeline", false},
		{"valid with dash", "my-network", false},
		{"valid with underscore", "my_network", false},
		{"valid with dot", "plant.v2", false},
		{"valid digits", "2026", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"path traversal", "a..b", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"leading dot", ".hidden", true},
		{"space", "my network", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateDocumentName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidName)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"plain", "Pump 3", false},
		{"unicode", "Vorlauf Süd", false},

		{"too long", strings.Repeat("x", 300), true},
		{"newline", "a\nb", true},
		{"tab", "a\tb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple file", "templates.json", false},
		{"nested path", "lib/pumps/templates.json", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret", true},
		{"traversal middle", "a/../../b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"too long", strings.Repeat("a", 600), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
