package google

import (
	"context"
	"testing"
)

func TestNewRejectsMissingConfiguration(t *testing.T) {
	tests := []struct {
		name          string
		spreadsheetID string
		sheetName     string
	}{
		{"missing spreadsheet ID", "", "Days"},
		{"blank spreadsheet ID", "   ", "Days"},
		{"missing sheet name", "1abc", ""},
		{"blank sheet name", "1abc", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), tt.spreadsheetID, tt.sheetName); err == nil {
				t.Fatalf("New(%q, %q) expected error", tt.spreadsheetID, tt.sheetName)
			}
		})
	}
}
