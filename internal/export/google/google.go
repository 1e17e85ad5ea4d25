// Package google exports completed day summaries to a Google Sheets
// spreadsheet, one row per category slice.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tempo/internal/analytics"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates a Sheets client for the given spreadsheet and sheet, as
// carried by the validated configuration. Credentials come from
// GOOGLE_CREDENTIALS_JSON (inline service-account key) or
// GOOGLE_APPLICATION_CREDENTIALS / ADC.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is required")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		return nil, errors.New("sheet name is required")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if creds := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON")); creds != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(creds)),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	// Fall back to Application Default Credentials.
	return gsheet.NewService(ctx, goption.WithScopes(gsheet.SpreadsheetsScope))
}

// AppendDaySummary appends one row per category of a completed day:
// date, owner, total minutes, category label, category minutes.
func (c *Client) AppendDaySummary(ctx context.Context, s analytics.DaySummary) error {
	rows := make([][]any, 0, len(s.ByCategory))
	for _, slice := range s.ByCategory {
		rows = append(rows, []any{
			s.Date.String(),
			s.Owner,
			s.TotalMinutes,
			slice.Label,
			slice.Minutes,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A:E", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append day summary rows: %w", err)
	}

	slog.InfoContext(ctx, "Day summary exported to Google Sheets",
		"owner", s.Owner,
		"date", s.Date.String(),
		"rows", len(rows),
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName)

	return nil
}
