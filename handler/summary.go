package handler

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"payment-epayco/dto/model"
	"payment-epayco/pkg/response"
	"payment-epayco/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

type SummaryHandler struct {
	transactions repository.TransactionRepository
	logger       *zap.Logger
	location     *time.Location
	now          func() time.Time
}

func NewSummaryHandler(transactions repository.TransactionRepository, logger *zap.Logger) *SummaryHandler {
	location, err := time.LoadLocation("America/Bogota")
	if err != nil {
		location = time.FixedZone("COT", -5*60*60)
	}
	return &SummaryHandler{transactions: transactions, logger: logger, location: location, now: time.Now}
}

var summaryHeaders = []string{"Date", "State", "Currency", "Total", "Amount"}

// GetTransactionSummary reports daily totals. Dates are inclusive and default
// to the last seven days.
func (h *SummaryHandler) GetTransactionSummary(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "GetTransactionSummary", "handler")
	defer span.End()

	from, to, err := h.dateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return response.Response(c, fiber.StatusBadRequest, err.Error())
	}

	data, err := h.transactions.DailySummary(spanCtx, from, to, c.Query("state"))
	if err != nil {
		h.logger.Error("Transaction summary failed", zap.Error(err))
		return response.ResponseError(c, err)
	}

	switch strings.ToLower(c.Query("format")) {
	case "csv":
		return exportCSVSummaryDaily(c, data)
	case "excel":
		return exportExcelSummaryDaily(c, data)
	default:
		return response.ResponseSuccess(c, fiber.StatusOK, data)
	}
}

func (h *SummaryHandler) dateRange(startStr, endStr string) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	today := h.now().In(h.location)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, h.location)
	if endStr != "" {
		parsed, err := time.ParseInLocation(layout, endStr, h.location)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q", endStr)
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -6)
	if startStr != "" {
		parsed, err := time.ParseInLocation(layout, startStr, h.location)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q", startStr)
		}
		start = parsed
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date is after end_date")
	}
	return start, end.AddDate(0, 0, 1), nil
}

func summaryRow(d model.TransactionDailySummary) []string {
	return []string{d.Date, d.State, d.Currency, fmt.Sprintf("%d", d.Total), d.Amount.String()}
}

func exportExcelSummaryDaily(c *fiber.Ctx, data []model.TransactionDailySummary) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	for i, h := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, d := range data {
		amount, _ := d.Amount.Float64()
		values := []interface{}{d.Date, d.State, d.Currency, d.Total, amount}
		for col, val := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=transaction_summary.xlsx")

	return f.Write(c.Context().Response.BodyWriter())
}

func exportCSVSummaryDaily(c *fiber.Ctx, data []model.TransactionDailySummary) error {
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment;filename=transaction_summary.csv")

	writer := csv.NewWriter(c.Context().Response.BodyWriter())
	if err := writer.Write(summaryHeaders); err != nil {
		return err
	}
	for _, d := range data {
		if err := writer.Write(summaryRow(d)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
