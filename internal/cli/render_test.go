package cli

import "testing"

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "dot", []string{"dot"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid dot", []string{"dot"}, false},
		{"valid all", []string{"svg", "dot", "pdf", "png"}, false},
		{"json is not a render format", []string{"json"}, true},
		{"mixed valid invalid", []string{"svg", "invalid"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, document, want string
	}{
		{"", "net", "net"},
		{"out.svg", "net", "out"},
		{"out.dot", "net", "out"},
		{"out", "net", "out"},
		{"out.txt", "net", "out.txt"},
		{"dir/out.png", "net", "dir/out"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.document); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.document, got, tt.want)
		}
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"/", 0},
		{"stage", 1},
		{"stage/inner", 2},
		{"/stage/inner/", 2},
	}
	for _, tt := range tests {
		if got := splitPath(tt.in); len(got) != tt.want {
			t.Errorf("splitPath(%q) = %v, want %d elements", tt.in, got, tt.want)
		}
	}
}

func TestNeedsConverter(t *testing.T) {
	if needsConverter([]string{"svg", "dot"}) {
		t.Error("needsConverter(svg, dot) = true")
	}
	if !needsConverter([]string{"svg", "png"}) {
		t.Error("needsConverter(svg, png) = false")
	}
}
