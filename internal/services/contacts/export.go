package contacts

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"acolhimento/internal/ports"
)

const exportSheet = "Contacts"

var exportHeader = []string{"ID", "Name", "Phone", "Email", "Reason", "Registered At", "Sync Status"}

// ExportXLSX writes up to the configured maximum of contacts into an XLSX
// workbook and returns its bytes.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	rows, err := s.repo.List(ctx, ports.ContactFilter{Limit: s.exportMax})
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	for i, c := range rows {
		email := ""
		if c.Email != nil {
			email = *c.Email
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{c.ID, c.Name, c.Phone, email, c.Reason, c.CreatedAt.Format(time.RFC3339), c.SyncStatus}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
