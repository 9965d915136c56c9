package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/internal/usecase/shift"
)

type ShiftController struct {
	uc *shift.ShiftUseCase
}

type ShiftDto struct {
	ID                  uint64          `json:"id"`
	StartTime           time.Time       `json:"start_time"`
	EndTime             *time.Time      `json:"end_time"`
	BaseMoney           decimal.Decimal `json:"base_money"`
	Status              string          `json:"status"`
	ShareToken          string          `json:"share_token"`
	TotalDeliveryAmount decimal.Decimal `json:"total_delivery_amount"`
	Note                *string         `json:"note"`
}

func NewShiftController(uc *shift.ShiftUseCase) ShiftController {
	return ShiftController{
		uc: uc,
	}
}

func toShiftDto(s entity.Shift) ShiftDto {
	return ShiftDto{
		ID:                  s.ID,
		StartTime:           s.StartTime,
		EndTime:             s.EndTime,
		BaseMoney:           s.BaseMoney,
		Status:              string(s.Status),
		ShareToken:          s.ShareToken,
		TotalDeliveryAmount: s.TotalDeliveryAmount,
		Note:                s.Note,
	}
}

// ============================================
// ========== POST /api/shifts/start ==========
// ============================================

type ShiftStartRequest struct {
	// number or numeric string
	BaseMoney json.Number `json:"base_money"`
	Note      *string     `json:"note"`
}

func (c *ShiftController) Start(ctx echo.Context) error {

	var req ShiftStartRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	created, err := c.uc.StartShift(ctx.Request().Context(), ownerID(ctx), shift.StartShiftDTO{
		BaseMoney: req.BaseMoney.String(),
		Note:      req.Note,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, toShiftDto(*created))
}

// ==========================================
// ========== POST /api/shifts/end ==========
// ==========================================

type ShiftEndResponse struct {
	Shift               ShiftDto        `json:"shift"`
	TotalDeliveryAmount decimal.Decimal `json:"total_delivery_amount"`
}

func (c *ShiftController) End(ctx echo.Context) error {

	closed, err := c.uc.EndShift(ctx.Request().Context(), ownerID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, ShiftEndResponse{
		Shift:               toShiftDto(*closed),
		TotalDeliveryAmount: closed.TotalDeliveryAmount,
	})
}

// ============================================
// ========== GET /api/shifts/current =========
// ============================================

type SnapshotResponse struct {
	Shift           ShiftDto        `json:"shift"`
	TotalDeliveries decimal.Decimal `json:"total_deliveries"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	DeliveryCount   int             `json:"delivery_count"`
}

func (c *ShiftController) Current(ctx echo.Context) error {

	snap, err := c.uc.CurrentSnapshot(ctx.Request().Context(), ownerID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, SnapshotResponse{
		Shift:           toShiftDto(snap.Shift),
		TotalDeliveries: snap.TotalDeliveries,
		TotalExpenses:   snap.TotalExpenses,
		GrandTotal:      snap.GrandTotal,
		DeliveryCount:   snap.DeliveryCount,
	})
}

// ============================================
// ========== GET /api/shifts/history =========
// ============================================

func (c *ShiftController) History(ctx echo.Context) error {

	var limit int
	var err error

	limitParam := ctx.QueryParam("limit")
	if limitParam != "" {
		limit, err = strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid 'limit' param")
		}
	}

	shifts, err := c.uc.ListHistory(ctx.Request().Context(), ownerID(ctx), limit)
	if err != nil {
		return err
	}

	res := []ShiftDto{}
	for _, s := range shifts {
		res = append(res, toShiftDto(s))
	}

	return ctx.JSON(http.StatusOK, res)
}
