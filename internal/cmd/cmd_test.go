package cmd

import (
	"testing"
	"time"
)

func TestTargetIDFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "event code in path",
			url:  "https://in.bookmyshow.com/events/arena-tour-final/ET00312876",
			want: "ET00312876",
		},
		{
			name: "lowercase event code normalized",
			url:  "https://tickets.example.com/et00312876",
			want: "ET00312876",
		},
		{
			name: "no event code falls back to last segment",
			url:  "https://tickets.example.com/events/arena-tour-final",
			want: "arena-tour-final",
		},
		{
			name: "trailing slash ignored",
			url:  "https://tickets.example.com/events/ET00099/",
			want: "ET00099",
		},
		{
			name:    "bare host has no segments",
			url:     "https://tickets.example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := targetIDFromURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("targetIDFromURL(%q) = %q, want error", tt.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("targetIDFromURL(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("targetIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestParseOnSale(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2026-09-01T10:00:00+05:30", false},
		{"2026-09-01 10:00", false},
		{"2026-09-01T10:00", false},
		{"2026-09-01", false},
		{"next tuesday", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ts, err := parseOnSale(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseOnSale(%q) = %v, want error", tt.input, ts)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOnSale(%q) error: %v", tt.input, err)
			}
			if ts.Year() != 2026 || ts.Month() != time.September {
				t.Errorf("parseOnSale(%q) = %v", tt.input, ts)
			}
		})
	}
}
