package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ovapp/sales-ledger/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(dataset model.ExportDataset) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, dataset); err != nil {
		return nil, err
	}

	if dataset.Clients != nil {
		file.NewSheet("Clients")
		if err := g.writeClients(file, "Clients", dataset.Clients); err != nil {
			return nil, err
		}
	}
	if dataset.Contracts != nil {
		file.NewSheet("Contracts")
		if err := g.writeContracts(file, "Contracts", dataset.Contracts); err != nil {
			return nil, err
		}
	}
	if dataset.Orders != nil {
		file.NewSheet("Orders")
		if err := g.writeOrders(file, "Orders", dataset.Orders); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, dataset model.ExportDataset) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Generated at")
	set("B1", formatDateTime(dataset.GeneratedAt))

	row := 3
	if dataset.Clients != nil {
		set(fmt.Sprintf("A%d", row), "Clients")
		set(fmt.Sprintf("B%d", row), len(dataset.Clients))
		row++
	}
	if dataset.Contracts != nil {
		set(fmt.Sprintf("A%d", row), "Contracts")
		set(fmt.Sprintf("B%d", row), len(dataset.Contracts))
		row++
	}
	if dataset.Orders != nil {
		set(fmt.Sprintf("A%d", row), "Purchase orders")
		set(fmt.Sprintf("B%d", row), len(dataset.Orders))
		row++
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 22)
	return nil
}

func (g *Generator) writeClients(file *excelize.File, sheet string, clients []model.Client) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"ID", "Name", "Email", "Phone", "Address", "Created"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, client := range clients {
		row := i + 2
		set(fmt.Sprintf("A%d", row), client.ID)
		set(fmt.Sprintf("B%d", row), client.Name)
		set(fmt.Sprintf("C%d", row), client.Email)
		set(fmt.Sprintf("D%d", row), client.Phone)
		set(fmt.Sprintf("E%d", row), client.Address)
		set(fmt.Sprintf("F%d", row), formatDate(client.CreatedAt))
	}

	_ = file.SetColWidth(sheet, "A", "A", 8)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	_ = file.SetColWidth(sheet, "C", "C", 28)
	_ = file.SetColWidth(sheet, "D", "E", 24)
	_ = file.SetColWidth(sheet, "F", "F", 14)
	return nil
}

func (g *Generator) writeContracts(file *excelize.File, sheet string, contracts []model.ContractWithClient) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Number",
		"Client",
		"Total volume",
		"Attended volume",
		"Pending volume",
		"Sale price",
		"Start date",
		"End date",
		"Status",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, contract := range contracts {
		row := i + 2
		set(fmt.Sprintf("A%d", row), contract.CorrelativeNumber)
		set(fmt.Sprintf("B%d", row), contract.ClientName)
		set(fmt.Sprintf("C%d", row), formatFloat(contract.TotalVolume))
		set(fmt.Sprintf("D%d", row), formatFloat(contract.AttendedVolume))
		set(fmt.Sprintf("E%d", row), formatFloat(contract.PendingVolume))
		set(fmt.Sprintf("F%d", row), formatFloat(contract.SalePrice))
		set(fmt.Sprintf("G%d", row), formatDate(contract.StartDate))
		set(fmt.Sprintf("H%d", row), formatDate(contract.EndDate))
		set(fmt.Sprintf("I%d", row), string(contract.Status))
	}

	_ = file.SetColWidth(sheet, "A", "A", 12)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	_ = file.SetColWidth(sheet, "C", "F", 16)
	_ = file.SetColWidth(sheet, "G", "H", 14)
	_ = file.SetColWidth(sheet, "I", "I", 12)
	return nil
}

func (g *Generator) writeOrders(file *excelize.File, sheet string, orders []model.OrderWithContract) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"ID",
		"Contract",
		"Client",
		"Volume",
		"Price",
		"Order date",
		"Delivery date",
		"Status",
		"Notes",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, order := range orders {
		row := i + 2
		contractNumber, clientName := "", ""
		if order.Contract != nil {
			contractNumber = order.Contract.CorrelativeNumber
			clientName = order.Contract.ClientName
		}
		set(fmt.Sprintf("A%d", row), order.ID)
		set(fmt.Sprintf("B%d", row), contractNumber)
		set(fmt.Sprintf("C%d", row), clientName)
		set(fmt.Sprintf("D%d", row), formatFloat(order.Volume))
		set(fmt.Sprintf("E%d", row), formatFloat(order.Price))
		set(fmt.Sprintf("F%d", row), formatDate(order.OrderDate))
		set(fmt.Sprintf("G%d", row), formatOptionalDate(order.DeliveryDate))
		set(fmt.Sprintf("H%d", row), string(order.Status))
		set(fmt.Sprintf("I%d", row), order.Notes)
	}

	_ = file.SetColWidth(sheet, "A", "A", 8)
	_ = file.SetColWidth(sheet, "B", "B", 12)
	_ = file.SetColWidth(sheet, "C", "C", 32)
	_ = file.SetColWidth(sheet, "D", "E", 14)
	_ = file.SetColWidth(sheet, "F", "G", 14)
	_ = file.SetColWidth(sheet, "H", "H", 12)
	_ = file.SetColWidth(sheet, "I", "I", 40)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatFloat(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
