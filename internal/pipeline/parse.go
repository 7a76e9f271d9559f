package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/iwvelando/pipeline-forecast/pkg/mathutil"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Fixed positions of the sheet layout (0-based).
const (
	nameRow     = 0
	clusterRow  = 1
	monthRow    = 2
	incomeRow   = 3
	staffRow    = 4
	expensesRow = 5
	firstColumn = 1
)

// Parser reads pipeline workbooks.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a parser with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// CheckExtension returns ErrUnsupportedFormat unless name ends in .xlsx,
// ignoring case.
func CheckExtension(name string) error {
	if !strings.EqualFold(filepath.Ext(name), constants.WorkbookExtension) {
		return fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	return nil
}

// ParseFile opens the workbook at path and parses it. Only .xlsx files are
// accepted.
func (p *Parser) ParseFile(path string) ([]Opportunity, error) {
	if err := CheckExtension(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	defer func() {
		_ = file.Close()
	}()

	return p.ParseWorkbook(file)
}

// ParseWorkbook reads every sheet of the workbook as one opportunity, in
// sheet order. It fails only when the workbook itself cannot be read.
func (p *Parser) ParseWorkbook(r io.Reader) ([]Opportunity, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			p.logger.Warn("failed to close workbook",
				zap.String("op", "pipeline.ParseWorkbook"),
				zap.Error(closeErr),
			)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Err: ErrEmptyWorkbook}
	}

	opportunities := make([]Opportunity, 0, len(sheets))
	hasData := false
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &ParseError{Sheet: sheet, Err: err}
		}
		if len(rows) > 0 {
			hasData = true
		}
		opportunities = append(opportunities, p.parseSheet(sheet, rows))
	}

	if !hasData {
		return nil, &ParseError{Err: ErrEmptyWorkbook}
	}

	p.logger.Debug("parsed pipeline workbook",
		zap.String("op", "pipeline.ParseWorkbook"),
		zap.Int("sheets", len(sheets)),
		zap.Int("opportunities", len(opportunities)),
	)
	return opportunities, nil
}

func (p *Parser) parseSheet(sheet string, rows [][]string) Opportunity {
	opp := Opportunity{
		Name:    strings.TrimSpace(cellText(rows, nameRow, 0)),
		Cluster: strings.TrimSpace(cellText(rows, clusterRow, 0)),
		Sheet:   sheet,
		Months:  make(map[string]Figures),
	}
	if opp.Name == "" {
		opp.Name = constants.OpportunityNamePrefix + sheet
	}
	if opp.Cluster == "" {
		opp.Cluster = constants.UnknownCluster
	}

	var header []string
	if monthRow < len(rows) {
		header = rows[monthRow]
	}

	for col := firstColumn; col < len(header); col++ {
		label, ok := monthLabel(header[col])
		if !ok {
			continue
		}
		figures := Figures{
			Income:   p.amount(sheet, rows, incomeRow, col),
			Staff:    p.amount(sheet, rows, staffRow, col),
			Expenses: p.amount(sheet, rows, expensesRow, col),
		}
		if _, dup := opp.Months[label]; !dup {
			opp.Labels = append(opp.Labels, label)
		}
		opp.Months[label] = figures
	}

	return opp
}

// monthLabel cleans a header cell. Blank and "nan" cells are not months.
func monthLabel(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "nan") {
		return "", false
	}
	label := strings.TrimLeft(trimmed, "'")
	return label, label != ""
}

// amount coerces one figure cell; anything that is not a finite number is 0.
func (p *Parser) amount(sheet string, rows [][]string, row, col int) float64 {
	text := cellText(rows, row, col)
	value, ok := mathutil.ParseAmount(text)
	if !ok && strings.TrimSpace(text) != "" {
		ref, _ := excelize.CoordinatesToCellName(col+1, row+1)
		p.logger.Debug("non-numeric cell treated as zero",
			zap.String("op", "pipeline.ParseWorkbook"),
			zap.String("sheet", sheet),
			zap.String("cell", ref),
			zap.String("value", text),
		)
	}
	return value
}

func cellText(rows [][]string, row, col int) string {
	if row >= len(rows) || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}
