package errors

import "testing"

func TestValidateTransformName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "toc", false},
		{"hyphenated", "heading-offset", false},
		{"with digits", "strip-html5", false},

		{"empty", "", true},
		{"uppercase", "TOC", true},
		{"leading hyphen", "-toc", true},
		{"trailing hyphen", "toc-", true},
		{"double hyphen", "heading--offset", true},
		{"spaces", "heading offset", true},
		{"too long", string(make([]byte, 65)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransformName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransformName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateTransformName(%q) returned wrong code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/doc.md", false},
		{"filename only", "README.md", false},
		{"absolute", "/tmp/doc.md", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"null byte", "doc\x00.md", true},
		{"control char", "doc\x01.md", true},
		{"newline", "doc\n.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
