package workbook

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"ganttcli/internal/errors"
	"ganttcli/pkg/contracts/domain"
)

const (
	valueRenderUnformatted = "UNFORMATTED_VALUE"
	dateRenderSerial       = "SERIAL_NUMBER"
	valueInputRaw          = "RAW"
)

// GoogleSheets reads and writes one spreadsheet through the Sheets API. It is
// both a Source and a Sink.
type GoogleSheets struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *slog.Logger

	mu     sync.Mutex
	titles map[string]bool
}

// NewGoogleSheets creates a Sheets client for spreadsheetID. With an empty
// credentialsFile the application default credentials are used.
func NewGoogleSheets(ctx context.Context, spreadsheetID, credentialsFile string, logger *slog.Logger, opts ...option.ClientOption) (*GoogleSheets, error) {
	if credentialsFile != "" {
		credentialsJSON, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, errors.NewConfigError("failed to read credentials file", err).
				WithContext("path", credentialsFile)
		}
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.NewNetworkError("failed to create sheets service", err)
	}
	return NewGoogleSheetsWithService(service, spreadsheetID, logger), nil
}

// NewGoogleSheetsWithService wraps an existing Sheets service.
func NewGoogleSheetsWithService(service *sheets.Service, spreadsheetID string, logger *slog.Logger) *GoogleSheets {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleSheets{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger: logger.With(
			slog.String("source", "gsheets"),
			slog.String("spreadsheet_id", spreadsheetID)),
	}
}

// Name identifies the sink in logs and metrics.
func (g *GoogleSheets) Name() string {
	return "gsheets"
}

// ReadRange reads unformatted values; dates arrive as serial numbers.
func (g *GoogleSheets) ReadRange(ctx context.Context, sheet, a1Range string) ([][]domain.Cell, error) {
	if _, err := ParseRange(a1Range); err != nil {
		return nil, errors.NewAppValidationError(err.Error())
	}

	titles, err := g.sheetTitles(ctx)
	if err != nil {
		return nil, err
	}
	if !titles[sheet] {
		return nil, errors.NewNotFoundError("sheet " + sheet).
			WithContext("spreadsheet_id", g.spreadsheetID)
	}

	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, A1(sheet, a1Range)).
		ValueRenderOption(valueRenderUnformatted).
		DateTimeRenderOption(dateRenderSerial).
		Context(ctx).
		Do()
	if err != nil {
		return nil, g.apiError("failed to read range", err).WithContext("range", A1(sheet, a1Range))
	}

	window := make([][]domain.Cell, len(resp.Values))
	for i, row := range resp.Values {
		window[i] = make([]domain.Cell, len(row))
		for j, v := range row {
			window[i][j] = valueCell(v)
		}
	}

	g.logger.DebugContext(ctx, "read sheets range",
		slog.String("sheet", sheet),
		slog.String("range", a1Range),
		slog.Int("rows", len(window)))

	return window, nil
}

// Commit creates missing output sheets, clears every output sheet in one
// batch call and writes all tables in a second one.
func (g *GoogleSheets) Commit(ctx context.Context, tables []domain.Table) error {
	if len(tables) == 0 {
		return nil
	}
	if err := g.ensureSheets(ctx, tables); err != nil {
		return err
	}

	clearReq := &sheets.BatchClearValuesRequest{}
	update := &sheets.BatchUpdateValuesRequest{ValueInputOption: valueInputRaw}
	for _, table := range tables {
		clearReq.Ranges = append(clearReq.Ranges, quoteSheet(table.Name))
		update.Data = append(update.Data, &sheets.ValueRange{
			Range:  A1(table.Name, "A1"),
			Values: sheetValues(table),
		})
	}

	if _, err := g.service.Spreadsheets.Values.BatchClear(g.spreadsheetID, clearReq).Context(ctx).Do(); err != nil {
		return g.apiError("failed to clear output sheets", err)
	}
	if _, err := g.service.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, update).Context(ctx).Do(); err != nil {
		return g.apiError("failed to write output sheets", err)
	}

	g.logger.InfoContext(ctx, "sheets tables written", slog.Int("tables", len(tables)))
	return nil
}

// Close is a no-op; the HTTP client is shared.
func (g *GoogleSheets) Close() error {
	return nil
}

func (g *GoogleSheets) ensureSheets(ctx context.Context, tables []domain.Table) error {
	titles, err := g.sheetTitles(ctx)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{}
	for _, table := range tables {
		if titles[table.Name] {
			continue
		}
		req.Requests = append(req.Requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: table.Name},
			},
		})
	}
	if len(req.Requests) == 0 {
		return nil
	}

	if _, err := g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return g.apiError("failed to add output sheets", err)
	}

	g.mu.Lock()
	for _, table := range tables {
		g.titles[table.Name] = true
	}
	g.mu.Unlock()
	return nil
}

// sheetTitles fetches the sheet names once per client and returns a copy.
func (g *GoogleSheets) sheetTitles(ctx context.Context) (map[string]bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.titles == nil {
		if err := g.fetchTitles(ctx); err != nil {
			return nil, err
		}
	}

	titles := make(map[string]bool, len(g.titles))
	for k, v := range g.titles {
		titles[k] = v
	}
	return titles, nil
}

func (g *GoogleSheets) fetchTitles(ctx context.Context) error {
	resp, err := g.service.Spreadsheets.Get(g.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return g.apiError("failed to fetch spreadsheet", err)
	}

	g.titles = make(map[string]bool, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			g.titles[sh.Properties.Title] = true
		}
	}
	return nil
}

func (g *GoogleSheets) apiError(msg string, err error) *errors.AppError {
	var gerr *googleapi.Error
	if stderrors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return errors.NewNotFoundError("spreadsheet " + g.spreadsheetID)
	}
	return errors.NewNetworkError(msg, err).WithContext("spreadsheet_id", g.spreadsheetID)
}

// sheetValues renders a table for the Values API. Empty cells become empty
// strings so a shorter row still overwrites the full width.
func sheetValues(table domain.Table) [][]interface{} {
	rows := tableRows(table)
	for _, row := range rows {
		for i, v := range row {
			if v == nil {
				row[i] = ""
			}
		}
	}
	return rows
}
