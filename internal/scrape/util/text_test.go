package util

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  hello   world  ", "hello world"},
		{"nbsp here", "nbsp here"},
		{"line\nbreaks\tand tabs", "line breaks and tabs"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := CleanText(tc.in); got != tc.want {
			t.Errorf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Location: New York, NY", "New York, NY"},
		{"New York, new york, NY", "New York, NY"},
		{"  Remote ", "Remote"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizeLocation(tc.in); got != tc.want {
			t.Errorf("NormalizeLocation(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{
			"tracking params dropped",
			"https://example.com/jobs/1?utm_source=alert&utm_campaign=x",
			"https://example.com/jobs/1",
			true,
		},
		{
			"param order normalized",
			"https://example.com/jobs/1?b=2&a=1",
			"https://example.com/jobs/1?a=1&b=2",
			true,
		},
		{
			"host case and trailing slash",
			"https://Example.COM/jobs/1/",
			"https://example.com/jobs/1",
			true,
		},
		{
			"fragment dropped",
			"https://example.com/jobs/1#apply",
			"https://example.com/jobs/1",
			true,
		},
		{
			"meaningful params kept",
			"https://example.com/jobs?id=1",
			"https://example.com/jobs?id=2",
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ca, cb := CanonicalURL(tc.a), CanonicalURL(tc.b)
			if (ca == cb) != tc.same {
				t.Errorf("CanonicalURL: %q vs %q (want same=%v)", ca, cb, tc.same)
			}
		})
	}
}

func TestParseSalary(t *testing.T) {
	tests := []struct {
		text     string
		min, max float64
		none     bool
	}{
		{text: "$70K - $90K", min: 70000, max: 90000},
		{text: "pays $120,000 per year", min: 120000},
		{text: "$90-$110 depending on experience", min: 90000, max: 110000},
		{text: "$1.2M total comp", min: 1200000},
		{text: "competitive salary", none: true},
		{text: "$110k to $130k", min: 110000, max: 130000},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			min, max := ParseSalary(tc.text)
			if tc.none {
				if min != nil || max != nil {
					t.Fatalf("want no salary, got %v/%v", min, max)
				}
				return
			}
			if min == nil || *min != tc.min {
				t.Errorf("min = %v, want %v", min, tc.min)
			}
			if tc.max != 0 {
				if max == nil || *max != tc.max {
					t.Errorf("max = %v, want %v", max, tc.max)
				}
			} else if max != nil {
				t.Errorf("max = %v, want nil", *max)
			}
		})
	}
}
