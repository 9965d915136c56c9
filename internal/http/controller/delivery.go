package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/internal/usecase/invoice"
)

type DeliveryController struct {
	uc *invoice.InvoiceUseCase
}

type DeliveryDto struct {
	ID             uint64          `json:"id"`
	ShiftID        *uint64         `json:"shift_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	Date           time.Time       `json:"date"`
	Phone          string          `json:"phone"`
	PhoneStatus    string          `json:"phone_status"`
	Address        string          `json:"address"`
	Amount         decimal.Decimal `json:"amount"`
	CustomerName   string          `json:"customer_name"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
	ImageURL       string          `json:"image_url"`
	OCRText        *string         `json:"ocr_text,omitempty"`
	Notes          *string         `json:"notes"`
	DeliveryStatus string          `json:"delivery_status"`
	DeliveryTime   *time.Time      `json:"delivery_time"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewDeliveryController(uc *invoice.InvoiceUseCase) DeliveryController {
	return DeliveryController{
		uc: uc,
	}
}

func toDeliveryDto(d entity.Delivery) DeliveryDto {
	return DeliveryDto{
		ID:             d.ID,
		ShiftID:        d.ShiftID,
		InvoiceNumber:  d.InvoiceNumber,
		Date:           d.Date,
		Phone:          d.Phone,
		PhoneStatus:    string(d.PhoneStatus),
		Address:        d.Address,
		Amount:         d.Amount,
		CustomerName:   d.CustomerName,
		Subtotal:       d.Subtotal,
		Total:          d.Total,
		ImageURL:       d.ImageURL,
		OCRText:        d.OCRText,
		Notes:          d.Notes,
		DeliveryStatus: string(d.Status),
		DeliveryTime:   d.DeliveryTime,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toDeliveryDtos(deliveries []entity.Delivery) []DeliveryDto {
	res := []DeliveryDto{}
	for _, d := range deliveries {
		res = append(res, toDeliveryDto(d))
	}
	return res
}

func deliveryIDParam(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, ":id must be valid integer")
	}
	return id, nil
}

func numberPtr(n *json.Number) *string {
	if n == nil {
		return nil
	}
	s := n.String()
	return &s
}

// ==========================================
// ========== POST /api/deliveries ==========
// ==========================================

type DeliveryCreateRequest struct {
	InvoiceNumber string      `json:"invoice_number"`
	Address       string      `json:"address" validate:"required"`
	Phone         string      `json:"phone"`
	Amount        json.Number `json:"amount" validate:"required"`
	CustomerName  string      `json:"customer_name"`
	Subtotal      json.Number `json:"subtotal"`
	Total         json.Number `json:"total"`
	ImageURL      string      `json:"image_url"`
	Notes         *string     `json:"notes"`
}

func (c *DeliveryController) Create(ctx echo.Context) error {

	var req DeliveryCreateRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := ctx.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	created, err := c.uc.Create(ctx.Request().Context(), ownerID(ctx), invoice.DeliveryToCreateDTO{
		InvoiceNumber: req.InvoiceNumber,
		Address:       req.Address,
		Phone:         req.Phone,
		Amount:        req.Amount.String(),
		CustomerName:  req.CustomerName,
		Subtotal:      req.Subtotal.String(),
		Total:         req.Total.String(),
		ImageURL:      req.ImageURL,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, toDeliveryDto(*created))
}

// ==============================================
// ========== POST /api/deliveries/ocr ==========
// ==============================================

type DeliveryOCRRequest struct {
	Text     string  `json:"text" validate:"required"`
	ImageURL string  `json:"image_url"`
	Notes    *string `json:"notes"`
}

func (c *DeliveryController) CreateFromOCR(ctx echo.Context) error {

	var req DeliveryOCRRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := ctx.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	created, err := c.uc.CreateFromOCRText(ctx.Request().Context(), ownerID(ctx), invoice.OCRDeliveryDTO{
		Text:     req.Text,
		ImageURL: req.ImageURL,
		Notes:    req.Notes,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, toDeliveryDto(*created))
}

// =========================================
// ========== GET /api/deliveries ==========
// =========================================

func (c *DeliveryController) GetAll(ctx echo.Context) error {

	deliveries, err := c.uc.AllByOwner(ctx.Request().Context(), ownerID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, toDeliveryDtos(deliveries))
}

// =================================================
// ========== GET /api/deliveries/pending ==========
// =================================================

func (c *DeliveryController) Pending(ctx echo.Context) error {

	deliveries, err := c.uc.PendingToday(ctx.Request().Context(), ownerID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, toDeliveryDtos(deliveries))
}

// =============================================
// ========== GET /api/deliveries/:id ==========
// =============================================

func (c *DeliveryController) GetByID(ctx echo.Context) error {

	id, err := deliveryIDParam(ctx)
	if err != nil {
		return err
	}

	d, err := c.uc.GetByID(ctx.Request().Context(), ownerID(ctx), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, toDeliveryDto(*d))
}

// =============================================
// ========== PUT /api/deliveries/:id ==========
// =============================================

type DeliveryUpdateRequest struct {
	InvoiceNumber *string      `json:"invoice_number"`
	Address       *string      `json:"address"`
	Phone         *string      `json:"phone"`
	Amount        *json.Number `json:"amount"`
	CustomerName  *string      `json:"customer_name"`
	Notes         *string      `json:"notes"`
}

func (c *DeliveryController) Update(ctx echo.Context) error {

	id, err := deliveryIDParam(ctx)
	if err != nil {
		return err
	}

	var req DeliveryUpdateRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	d, err := c.uc.Update(ctx.Request().Context(), ownerID(ctx), id, invoice.DeliveryToUpdateDTO{
		InvoiceNumber: req.InvoiceNumber,
		Address:       req.Address,
		Phone:         req.Phone,
		Amount:        numberPtr(req.Amount),
		CustomerName:  req.CustomerName,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, toDeliveryDto(*d))
}

// ================================================
// ========== DELETE /api/deliveries/:id ==========
// ================================================

func (c *DeliveryController) Delete(ctx echo.Context) error {

	id, err := deliveryIDParam(ctx)
	if err != nil {
		return err
	}

	if err := c.uc.Delete(ctx.Request().Context(), ownerID(ctx), id); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ======================================================
// ========== POST /api/deliveries/:id/status ===========
// ======================================================

type DeliveryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (c *DeliveryController) SetStatus(ctx echo.Context) error {

	id, err := deliveryIDParam(ctx)
	if err != nil {
		return err
	}

	var req DeliveryStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := ctx.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	d, err := c.uc.SetStatus(ctx.Request().Context(), ownerID(ctx), id, invoice.StatusDTO{
		Status: req.Status,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, toDeliveryDto(*d))
}

// ====================================
// ========== GET /api/stats ==========
// ====================================

type DailyTotalDto struct {
	Day   string          `json:"day"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type StatsResponse struct {
	Total   decimal.Decimal `json:"total"`
	Today   DailyTotalDto   `json:"today"`
	History []DailyTotalDto `json:"history"`
}

func (c *DeliveryController) Stats(ctx echo.Context) error {

	stats, err := c.uc.DailyStats(ctx.Request().Context(), ownerID(ctx))
	if err != nil {
		return err
	}

	res := StatsResponse{
		Total: stats.Total,
		Today: DailyTotalDto{
			Day:   stats.Today.Day,
			Total: stats.Today.Total,
			Count: stats.Today.Count,
		},
		History: []DailyTotalDto{},
	}
	for _, d := range stats.History {
		res.History = append(res.History, DailyTotalDto{
			Day:   d.Day,
			Total: d.Total,
			Count: d.Count,
		})
	}

	return ctx.JSON(http.StatusOK, res)
}
