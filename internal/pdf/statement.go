package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ovapp/sales-ledger/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(statement model.ContractStatement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	contract := statement.Contract

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, safeValue(statement.CompanyName), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract statement No. %s", contract.CorrelativeNumber), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Period %s to %s", formatDate(contract.StartDate), formatDate(contract.EndDate)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addClientBlock(pdf, g.fontName, contract)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Volume accounting", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	volumeHeaders := []string{"Total volume", "Attended volume", "Pending volume", "Sale price", "Status"}
	volumeWidths := []float64{36, 36, 36, 36, 36}
	drawTableRow(pdf, g.fontName, volumeHeaders, volumeWidths, true)
	drawTableRow(pdf, g.fontName, []string{
		formatAmount(contract.TotalVolume, 2),
		formatAmount(contract.AttendedVolume, 2),
		formatAmount(contract.PendingVolume, 2),
		formatMoney(contract.SalePrice, statement.Currency),
		string(contract.Status),
	}, volumeWidths, false)

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Purchase orders", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	orderHeaders := []string{"ID", "Order date", "Delivery date", "Volume", "Price", "Status"}
	orderWidths := []float64{18, 32, 32, 32, 40, 26}
	drawTableRow(pdf, g.fontName, orderHeaders, orderWidths, true)

	var deliveredVolume float64
	for _, order := range statement.Orders {
		drawTableRow(pdf, g.fontName, []string{
			fmt.Sprintf("%d", order.ID),
			formatDate(order.OrderDate),
			formatOptionalDate(order.DeliveryDate),
			formatAmount(order.Volume, 2),
			formatMoney(order.Price, statement.Currency),
			string(order.Status),
		}, orderWidths, false)
		if order.Status == model.OrderStatusDelivered {
			deliveredVolume += order.Volume
		}
	}
	if len(statement.Orders) == 0 {
		pdf.CellFormat(0, 8, "No purchase orders recorded", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Delivered volume: %s of %s", formatAmount(deliveredVolume, 2), formatAmount(contract.TotalVolume, 2)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract value: %s", formatMoney(contract.TotalVolume*contract.SalePrice, statement.Currency)), "", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "I", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated on %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addClientBlock(pdf *gofpdf.Fpdf, fontName string, contract model.ContractWithClient) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, "Client", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		safeValue(contract.ClientName),
		fmt.Sprintf("Email: %s", safeValue(contract.ClientEmail)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatMoney(value float64, currency string) string {
	if strings.TrimSpace(currency) == "" {
		return formatAmount(value, 2)
	}
	return fmt.Sprintf("%s %s", formatAmount(value, 2), currency)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}
