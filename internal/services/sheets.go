package services

import (
	"context"
	"fmt"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"payment_options_echo/internal/storage"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// InitSheets builds a Sheets client from service account JSON. When sheetID
// is empty the spreadsheet is looked up by title through Drive.
func InitSheets(ctx context.Context, credentialsJSON, sheetName, sheetID string) (*storage.SheetsClient, error) {
	creds := option.WithCredentialsJSON([]byte(credentialsJSON))

	srv, err := sheetsv4.NewService(ctx, creds, option.WithScopes(sheetsv4.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	if sheetID == "" {
		sheetID, err = findSpreadsheetID(ctx, creds, sheetName)
		if err != nil {
			return nil, err
		}
	}
	return storage.NewSheetsClient(srv, sheetID), nil
}

func findSpreadsheetID(ctx context.Context, creds option.ClientOption, name string) (string, error) {
	drv, err := drive.NewService(ctx, creds, option.WithScopes(drive.DriveMetadataReadonlyScope))
	if err != nil {
		return "", fmt.Errorf("drive service: %w", err)
	}

	list, err := drv.Files.List().
		Q(spreadsheetQuery(name)).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("find spreadsheet %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("spreadsheet %q not found or not shared with the service account", name)
	}
	return list.Files[0].Id, nil
}

func spreadsheetQuery(name string) string {
	escaped := strings.ReplaceAll(name, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escaped, spreadsheetMimeType)
}
