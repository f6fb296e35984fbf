package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"eventra/model"

	"github.com/xuri/excelize/v2"
)

const TicketSheet = "Tickets"

var ticketColumns = []struct {
	header string
	width  float64
}{
	{"Ticket ID", 30},
	{"Zone", 10},
	{"Price", 10},
	{"Status", 15},
	{"Customer Name", 30},
	{"Purchase Date", 25},
	{"Scan Status", 15},
	{"Scan Timestamp", 25},
}

func buildTicketWorkbook(tickets []model.Ticket) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TicketSheet); err != nil {
		return nil, err
	}

	header := make([]any, len(ticketColumns))
	for i, col := range ticketColumns {
		header[i] = col.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(TicketSheet, name, name, col.width); err != nil {
			return nil, err
		}
	}
	if err := f.SetSheetRow(TicketSheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(TicketSheet, "A1", "H1", bold); err != nil {
		return nil, err
	}

	for i, t := range tickets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			t.TicketId,
			string(t.Zone),
			t.Price,
			string(t.Status),
			t.CustomerName,
			FormatTimestamp(t.PurchaseDate),
			string(t.ScanStatus),
			FormatTimestamp(t.ScanTimestamp),
		}
		if err := f.SetSheetRow(TicketSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}

// WriteTicketWorkbook streams a one-row-per-ticket workbook to w.
func WriteTicketWorkbook(w io.Writer, tickets []model.Ticket) error {
	f, err := buildTicketWorkbook(tickets)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveTicketWorkbook replaces path with a fresh workbook. The file is written
// next to the target and renamed so readers never see a partial file.
func SaveTicketWorkbook(path string, tickets []model.Ticket) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tickets-*.xlsx")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteTicketWorkbook(tmp, tickets); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
