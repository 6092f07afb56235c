package sheets

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// GoogleSheetsStore implements Store against the Google Sheets API.
type GoogleSheetsStore struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetName     string
}

// NewGoogleSheetsStore authenticates with a service-account credentials
// file and ensures the header row exists.
func NewGoogleSheetsStore(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*GoogleSheetsStore, error) {
	if credentialsFile == "" || spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: credentials file and spreadsheet id are required")
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	s := &GoogleSheetsStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}
	if err := s.ensureHeader(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureHeader writes the header row when the first row is missing or
// differs from the expected columns.
func (s *GoogleSheetsStore) ensureHeader(ctx context.Context) error {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.sheetName+"!1:1").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: read header row: %w", err)
	}

	if len(resp.Values) > 0 && headerMatches(resp.Values[0]) {
		return nil
	}

	if len(resp.Values) > 0 {
		// Data in row 1 that is not the header: push it down first.
		sheetID, err := s.sheetID(ctx)
		if err != nil {
			return err
		}
		_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheets.Request{{
				InsertDimension: &gsheets.InsertDimensionRequest{
					Range: &gsheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: 0,
						EndIndex:   1,
					},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("sheets: insert header row: %w", err)
		}
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	_, err = s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, s.sheetName+"!A1", &gsheets.ValueRange{Values: [][]interface{}{header}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: write header row: %w", err)
	}
	return nil
}

func (s *GoogleSheetsStore) sheetID(ctx context.Context) (int64, error) {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("sheets: read spreadsheet metadata: %w", err)
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.sheetName {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheets: worksheet %q not found", s.sheetName)
}

func headerMatches(row []interface{}) bool {
	if len(row) < len(Header) {
		return false
	}
	for i, want := range Header {
		got, ok := row[i].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Append adds one appointment row below the existing data.
func (s *GoogleSheetsStore) Append(ctx context.Context, row Row) error {
	values := row.Values()
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetName, &gsheets.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	return nil
}

// List returns all appointment rows, skipping the header.
func (s *GoogleSheetsStore) List(ctx context.Context) ([]Row, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.sheetName).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read rows: %w", err)
	}

	var rows []Row
	for i, raw := range resp.Values {
		if i == 0 {
			continue
		}
		rows = append(rows, rowFromCells(raw))
	}
	return rows, nil
}

func rowFromCells(cells []interface{}) Row {
	get := func(i int) string {
		if i < len(cells) {
			if s, ok := cells[i].(string); ok {
				return s
			}
		}
		return ""
	}

	var ts time.Time
	if parsed, err := time.Parse(TimestampLayout, get(0)); err == nil {
		ts = parsed
	}
	return Row{
		Timestamp:       ts,
		PatientName:     get(1),
		Doctor:          get(2),
		AppointmentDate: get(3),
		AppointmentTime: get(4),
	}
}
