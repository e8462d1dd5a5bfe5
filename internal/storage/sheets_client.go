package storage

import (
	"context"
	"fmt"
	"strings"

	sheetsv4 "google.golang.org/api/sheets/v4"
)

// SheetsClient wraps the Google Sheets values API for a single spreadsheet
type SheetsClient struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

func NewSheetsClient(srv *sheetsv4.Service, spreadsheetID string) *SheetsClient {
	return &SheetsClient{srv: srv, spreadsheetID: spreadsheetID}
}

func (c *SheetsClient) SpreadsheetID() string { return c.spreadsheetID }

func (c *SheetsClient) ReadAll(ctx context.Context, tab string) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, a1(tab, "A:Z")).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (c *SheetsClient) AppendRow(ctx context.Context, tab string, row []interface{}) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, a1(tab, "A:Z"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// UpdateRow overwrites the row starting at column A. rowNum is 1-indexed.
func (c *SheetsClient) UpdateRow(ctx context.Context, tab string, rowNum int, row []interface{}) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, a1(tab, fmt.Sprintf("A%d", rowNum)), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// FirstSheetTitle returns the title of the first worksheet
func (c *SheetsClient) FirstSheetTitle(ctx context.Context) (string, error) {
	titles, err := c.sheetTitles(ctx)
	if err != nil {
		return "", err
	}
	if len(titles) == 0 {
		return "", fmt.Errorf("spreadsheet %s has no worksheets", c.spreadsheetID)
	}
	return titles[0], nil
}

// EnsureSheet adds a worksheet with the given title if it does not exist yet
func (c *SheetsClient) EnsureSheet(ctx context.Context, title string) error {
	titles, err := c.sheetTitles(ctx)
	if err != nil {
		return err
	}
	for _, t := range titles {
		if t == title {
			return nil
		}
	}

	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add worksheet %q: %w", title, err)
	}
	return nil
}

func (c *SheetsClient) sheetTitles(ctx context.Context) ([]string, error) {
	ss, err := c.srv.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

// a1 builds a range like 'Sheet 1'!A:Z
func a1(tab, cells string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!" + cells
}
