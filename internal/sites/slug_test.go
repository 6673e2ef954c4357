package sites

import "testing"

func TestValidSiteID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"pv_12345678", true},
		{"pv_deadbeef", true},
		{"pv_DEADBEEF", false},
		{"pv_1234567", false},
		{"pv_123456789", false},
		{"xx_12345678", false},
		{"pv_1234567g", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidSiteID(tt.id); got != tt.valid {
			t.Errorf("ValidSiteID(%q) = %v, want %v", tt.id, got, tt.valid)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Cool App", "my-cool-app"},
		{"  spaces  ", "spaces"},
		{"Already-Slugged", "already-slugged"},
		{"weird!!chars??here", "weird-chars-here"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidAppName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"My Cool App", true},
		{"app-2", true},
		{"App", true},
		{"bad!name", false},
		{"émoji🎉", false},
		{"", false},
		{"---", false},
	}

	for _, tt := range tests {
		if got := ValidAppName(tt.name); got != tt.valid {
			t.Errorf("ValidAppName(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"my-app": true, "my-app1": true}

	if got := UniqueSlug("fresh", taken); got != "fresh" {
		t.Errorf("UniqueSlug(fresh) = %q", got)
	}
	if got := UniqueSlug("my-app", taken); got != "my-app2" {
		t.Errorf("UniqueSlug(my-app) = %q, want my-app2", got)
	}
}
