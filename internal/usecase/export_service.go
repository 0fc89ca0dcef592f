package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/xuri/excelize/v2"

	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/platform/logging"
)

const (
	totalsSheetName   = "corners_alt"
	handicapSheetName = "corners_handicap"
)

// Column order on the totals sheet is a compatibility contract with the
// spreadsheets this service replaces. Do not reorder or rename.
var totalsHeader = []any{"fixture_id", "match", "starting_at", "bookmaker_id", "total", "Over", "Under", "max_price"}
var handicapHeader = []any{"fixture_id", "match", "starting_at", "bookmaker_id", "line", "Home", "Away", "max_price"}

// ExportService renders a finished search into an xlsx workbook.
type ExportService struct {
	logger *logging.Logger
}

func NewExportService(logger *logging.Logger) *ExportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExportService{logger: logger}
}

// Export builds the workbook and returns its suggested filename and bytes.
// Totals and handicap results land on separate sheets; a workbook always
// carries at least the totals sheet, even when only its header row exists.
func (s *ExportService) Export(ctx context.Context, provider quote.ProviderKind, day time.Time, line float64, results []quote.ResultRow) (string, []byte, error) {
	ctx, span := startUsecaseSpan(ctx, "ExportService.Export")
	defer span.End()

	if len(results) == 0 {
		return "", nil, fmt.Errorf("%w: nothing to export", ErrNoThresholdMatches)
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	if err := file.SetSheetName(file.GetSheetName(0), totalsSheetName); err != nil {
		return "", nil, crerr.Wrap(err, "rename totals sheet")
	}
	if err := file.SetSheetRow(totalsSheetName, "A1", &totalsHeader); err != nil {
		return "", nil, crerr.Wrap(err, "write totals header")
	}

	totalsNext := 2
	handicapNext := 0
	for _, row := range results {
		sheet := totalsSheetName
		var rowIndex int

		switch row.Kind {
		case quote.MarketHandicap:
			sheet = handicapSheetName
			if handicapNext == 0 {
				if _, err := file.NewSheet(handicapSheetName); err != nil {
					return "", nil, crerr.Wrap(err, "create handicap sheet")
				}
				if err := file.SetSheetRow(handicapSheetName, "A1", &handicapHeader); err != nil {
					return "", nil, crerr.Wrap(err, "write handicap header")
				}
				handicapNext = 2
			}
			rowIndex = handicapNext
			handicapNext++
		default:
			rowIndex = totalsNext
			totalsNext++
		}

		cell, err := excelize.CoordinatesToCellName(1, rowIndex)
		if err != nil {
			return "", nil, crerr.Wrap(err, "compute row cell")
		}
		values := exportRowValues(row)
		if err := file.SetSheetRow(sheet, cell, &values); err != nil {
			return "", nil, crerr.Wrap(err, "write result row")
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := file.Write(buf); err != nil {
		return "", nil, crerr.Wrap(err, "serialize workbook")
	}
	data := append([]byte(nil), buf.B...)

	filename := ExportFilename(provider, day, line)
	s.logger.InfoContext(ctx, "export workbook built",
		"provider", string(provider),
		"filename", filename,
		"rows", len(results),
		"bytes", len(data),
	)
	return filename, data, nil
}

func exportRowValues(row quote.ResultRow) []any {
	return []any{
		row.EventID,
		row.MatchName,
		row.KickoffRaw,
		row.Bookmaker,
		row.Line,
		sideValue(row.FirstSide()),
		sideValue(row.SecondSide()),
		row.RankPrice,
	}
}

func sideValue(price *float64) any {
	if price == nil {
		return nil
	}
	return *price
}

// ExportFilename encodes provider, line and day into the download name,
// with the line's decimal point flattened so the name stays portable:
// sportmonks_corners_L8_5_2026-08-28.xlsx.
func ExportFilename(provider quote.ProviderKind, day time.Time, line float64) string {
	lineToken := strings.ReplaceAll(strconv.FormatFloat(line, 'f', -1, 64), ".", "_")
	return fmt.Sprintf("%s_corners_L%s_%s.xlsx", provider, lineToken, day.UTC().Format("2006-01-02"))
}
