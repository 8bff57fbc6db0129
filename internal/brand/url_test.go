package brand

import "testing"

func TestCanonicalBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare domain", in: "memy.co.in", want: "https://memy.co.in"},
		{name: "trailing slash", in: "https://example.com/", want: "https://example.com"},
		{name: "upper host", in: "HTTPS://Example.COM", want: "https://example.com"},
		{name: "existing scheme kept", in: "http://example.com", want: "http://example.com"},
		{name: "whitespace trimmed", in: "  example.com  ", want: "https://example.com"},
		{name: "empty", in: "", wantErr: true},
		{name: "no host", in: "https://", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CanonicalBaseURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CanonicalBaseURL(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("CanonicalBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	base := "https://example.com"
	if got := AbsoluteURL(base, "/pages/faq"); got != "https://example.com/pages/faq" {
		t.Fatalf("relative link resolved to %q", got)
	}
	if got := AbsoluteURL(base, "https://other.com/x"); got != "https://other.com/x" {
		t.Fatalf("absolute link rewritten to %q", got)
	}
}

func TestCanonicalPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/products/Tee-Shirt/", "/products/tee-shirt"},
		{"/products/tee-shirt", "/products/tee-shirt"},
		{"https://example.com/", ""},
	}
	for _, tt := range tests {
		if got := CanonicalPath(tt.in); got != tt.want {
			t.Fatalf("CanonicalPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
