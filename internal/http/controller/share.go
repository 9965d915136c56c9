package controller

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/DrkBotBase/delivery/internal/report"
	"github.com/DrkBotBase/delivery/internal/usecase/shift"
)

// ShareController serves shift reports to anyone holding the share token.
type ShareController struct {
	uc  *shift.ShiftUseCase
	loc *time.Location
}

func NewShareController(uc *shift.ShiftUseCase, loc *time.Location) ShareController {
	return ShareController{
		uc:  uc,
		loc: loc,
	}
}

// ======================================
// ========== GET /share/:token =========
// ======================================

type LedgerEntryDto struct {
	Kind        string          `json:"kind"`
	ID          uint64          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	At          time.Time       `json:"at"`
}

type ReportResponse struct {
	Shift           ShiftDto         `json:"shift"`
	TotalDeliveries decimal.Decimal  `json:"total_deliveries"`
	TotalExpenses   decimal.Decimal  `json:"total_expenses"`
	GrandTotal      decimal.Decimal  `json:"grand_total"`
	DeliveryCount   int              `json:"delivery_count"`
	Entries         []LedgerEntryDto `json:"entries"`
}

func (c *ShareController) Report(ctx echo.Context) error {

	r, err := c.uc.ClosedReport(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return err
	}

	res := ReportResponse{
		Shift:           toShiftDto(r.Shift),
		TotalDeliveries: r.TotalDeliveries,
		TotalExpenses:   r.TotalExpenses,
		GrandTotal:      r.GrandTotal,
		DeliveryCount:   r.DeliveryCount,
		Entries:         []LedgerEntryDto{},
	}
	for _, e := range r.Entries {
		res.Entries = append(res.Entries, LedgerEntryDto{
			Kind:        string(e.Kind),
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount,
			At:          e.At,
		})
	}

	return ctx.JSON(http.StatusOK, res)
}

// ==================================================
// ========== GET /share/:token/export.xlsx =========
// ==================================================

func (c *ShareController) Export(ctx echo.Context) error {

	r, err := c.uc.ClosedReport(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, r, c.loc); err != nil {
		return err
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="turno.xlsx"`)
	return ctx.Blob(http.StatusOK, report.ContentType, buf.Bytes())
}
