package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/internal/usecase/expense"
)

type ExpenseController struct {
	uc *expense.ExpenseUseCase
}

type ExpenseDto struct {
	ID          uint64          `json:"id"`
	ShiftID     *uint64         `json:"shift_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
}

func NewExpenseController(uc *expense.ExpenseUseCase) ExpenseController {
	return ExpenseController{
		uc: uc,
	}
}

func toExpenseDto(e entity.Expense) ExpenseDto {
	return ExpenseDto{
		ID:          e.ID,
		ShiftID:     e.ShiftID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
	}
}

// ========================================
// ========== POST /api/expenses ==========
// ========================================

type ExpenseCreateRequest struct {
	Description string      `json:"description" validate:"required"`
	Amount      json.Number `json:"amount" validate:"required"`
	Date        *time.Time  `json:"date"`
}

func (c *ExpenseController) Create(ctx echo.Context) error {

	var req ExpenseCreateRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := ctx.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	dto := expense.ExpenseToCreateDTO{
		Description: req.Description,
		Amount:      req.Amount.String(),
	}
	if req.Date != nil {
		dto.Date = *req.Date
	}

	created, err := c.uc.Create(ctx.Request().Context(), ownerID(ctx), dto)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, toExpenseDto(*created))
}

// =======================================
// ========== GET /api/expenses ==========
// =======================================

func (c *ExpenseController) GetAll(ctx echo.Context) error {

	var shiftID *uint64

	shiftIdParam := ctx.QueryParam("shift_id")
	if shiftIdParam != "" {
		id, err := strconv.ParseUint(shiftIdParam, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid 'shift_id' param")
		}
		shiftID = &id
	}

	expenses, err := c.uc.AllByOwner(ctx.Request().Context(), ownerID(ctx), shiftID)
	if err != nil {
		return err
	}

	res := []ExpenseDto{}
	for _, e := range expenses {
		res = append(res, toExpenseDto(e))
	}

	return ctx.JSON(http.StatusOK, res)
}

// ==============================================
// ========== DELETE /api/expenses/:id ==========
// ==============================================

func (c *ExpenseController) Delete(ctx echo.Context) error {

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ":id must be valid integer")
	}

	if err := c.uc.Delete(ctx.Request().Context(), ownerID(ctx), id); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}
