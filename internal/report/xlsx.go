// Package report renders shift reports for download.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/internal/usecase/shift"
)

const (
	SummarySheet   = "Resumen"
	MovementsSheet = "Movimientos"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateTimeLayout = "2006-01-02 15:04"
)

var entryKindLabels = map[entity.EntryKind]string{
	entity.EntryDelivery: "Domicilio",
	entity.EntryExpense:  "Gasto",
}

// WriteXLSX writes the report as a workbook with a summary sheet and one row
// per movement. Times are shown in loc.
func WriteXLSX(w io.Writer, r *shift.Report, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(MovementsSheet); err != nil {
		return err
	}

	if err := writeSummary(f, r, loc); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := writeMovements(f, r.Entries, loc); err != nil {
		return fmt.Errorf("write movements: %w", err)
	}

	return f.Write(w)
}

func writeSummary(f *excelize.File, r *shift.Report, loc *time.Location) error {
	end := ""
	if r.Shift.EndTime != nil {
		end = r.Shift.EndTime.In(loc).Format(dateTimeLayout)
	}

	rows := [][]interface{}{
		{"Turno", r.Shift.ID},
		{"Estado", string(r.Shift.Status)},
		{"Inicio", r.Shift.StartTime.In(loc).Format(dateTimeLayout)},
		{"Fin", end},
		{"Base", r.Shift.BaseMoney.InexactFloat64()},
		{"Domicilios", r.TotalDeliveries.InexactFloat64()},
		{"Gastos", r.TotalExpenses.InexactFloat64()},
		{"Total", r.GrandTotal.InexactFloat64()},
		{"Cantidad de domicilios", r.DeliveryCount},
		{"Total domicilios al cierre", r.Shift.TotalDeliveryAmount.InexactFloat64()},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

func writeMovements(f *excelize.File, entries []entity.LedgerEntry, loc *time.Location) error {
	header := []interface{}{"Tipo", "ID", "Descripción", "Monto", "Fecha"}
	if err := f.SetSheetRow(MovementsSheet, "A1", &header); err != nil {
		return err
	}

	for i, e := range entries {
		row := []interface{}{
			entryKindLabels[e.Kind],
			e.ID,
			e.Description,
			e.Amount.InexactFloat64(),
			e.At.In(loc).Format(dateTimeLayout),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(MovementsSheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}
