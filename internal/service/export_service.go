package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ovapp/sales-ledger/internal/model"
)

type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// WorkbookGenerator renders an export dataset as a spreadsheet workbook.
type WorkbookGenerator interface {
	Generate(dataset model.ExportDataset) ([]byte, error)
}

// StatementGenerator renders a printable contract statement.
type StatementGenerator interface {
	Generate(statement model.ContractStatement) ([]byte, error)
}

// ExportService serializes ledger query results for download. It is a pure
// read-side formatting layer over the other services.
type ExportService struct {
	repo      Repository
	orders    *OrderService
	settings  *SettingsService
	workbook  WorkbookGenerator
	statement StatementGenerator
	now       func() time.Time
}

func NewExportService(
	repo Repository,
	orders *OrderService,
	settings *SettingsService,
	workbook WorkbookGenerator,
	statement StatementGenerator,
) *ExportService {
	return &ExportService{
		repo:      repo,
		orders:    orders,
		settings:  settings,
		workbook:  workbook,
		statement: statement,
		now:       time.Now,
	}
}

type ExportInput struct {
	Format    ExportFormat
	Clients   bool
	Contracts bool
	Orders    bool
}

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Export assembles the requested data sets and serializes them. CSV being
// flat, it only accepts a single data set per request.
func (s *ExportService) Export(ctx context.Context, input ExportInput) (*ExportResult, error) {
	if !input.Clients && !input.Contracts && !input.Orders {
		return nil, fmt.Errorf("%w: no data sets selected", ErrInvalidInput)
	}

	dataset, err := s.buildDataset(ctx, input)
	if err != nil {
		return nil, err
	}

	switch input.Format {
	case ExportFormatJSON:
		content, err := exportJSON(dataset)
		if err != nil {
			return nil, err
		}
		return s.result(input, "application/json", content), nil
	case ExportFormatCSV:
		if countSelected(input) > 1 {
			return nil, fmt.Errorf("%w: csv export supports a single data set per request", ErrInvalidInput)
		}
		content, err := exportCSV(dataset)
		if err != nil {
			return nil, err
		}
		return s.result(input, "text/csv", content), nil
	case ExportFormatXLSX:
		content, err := s.workbook.Generate(dataset)
		if err != nil {
			return nil, err
		}
		return s.result(input, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content), nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, input.Format)
	}
}

// ContractStatement renders the PDF statement for one contract: header,
// volume accounting and the order history.
func (s *ExportService) ContractStatement(ctx context.Context, contractID int64) (*ExportResult, error) {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, mapStoreErr(err, "contract")
	}
	enriched := model.ContractWithClient{Contract: *contract, ClientName: "unknown client"}
	if client, err := s.repo.GetClient(ctx, contract.ClientID); err == nil {
		enriched.ClientName = client.Name
		enriched.ClientEmail = client.Email
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	orders, err := s.repo.ListOrdersByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	content, err := s.statement.Generate(model.ContractStatement{
		Contract:    enriched,
		Orders:      orders,
		CompanyName: settings.General.CompanyName,
		Currency:    settings.Localization.Currency,
	})
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName:    fmt.Sprintf("contract-%s.pdf", contract.CorrelativeNumber),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

func (s *ExportService) buildDataset(ctx context.Context, input ExportInput) (model.ExportDataset, error) {
	dataset := model.ExportDataset{GeneratedAt: s.now()}

	if input.Clients {
		clients, err := s.repo.ListClients(ctx)
		if err != nil {
			return dataset, err
		}
		dataset.Clients = clients
	}
	if input.Contracts {
		contracts, err := s.repo.ListContracts(ctx)
		if err != nil {
			return dataset, err
		}
		enriched := make([]model.ContractWithClient, 0, len(contracts))
		for _, contract := range contracts {
			row := model.ContractWithClient{Contract: contract, ClientName: "unknown client"}
			if client, err := s.repo.GetClient(ctx, contract.ClientID); err == nil {
				row.ClientName = client.Name
				row.ClientEmail = client.Email
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dataset, err
			}
			enriched = append(enriched, row)
		}
		dataset.Contracts = enriched
	}
	if input.Orders {
		orders, err := s.orders.List(ctx)
		if err != nil {
			return dataset, err
		}
		dataset.Orders = orders
	}
	return dataset, nil
}

func (s *ExportService) result(input ExportInput, contentType string, content []byte) *ExportResult {
	return &ExportResult{
		FileName:    fmt.Sprintf("export-%s-%s.%s", exportScope(input), s.now().Format("20060102-150405"), input.Format),
		ContentType: contentType,
		Content:     content,
	}
}

func exportScope(input ExportInput) string {
	var parts []string
	if input.Clients {
		parts = append(parts, "clients")
	}
	if input.Contracts {
		parts = append(parts, "contracts")
	}
	if input.Orders {
		parts = append(parts, "orders")
	}
	if len(parts) == 3 {
		return "all"
	}
	return strings.Join(parts, "-")
}

func countSelected(input ExportInput) int {
	count := 0
	for _, selected := range []bool{input.Clients, input.Contracts, input.Orders} {
		if selected {
			count++
		}
	}
	return count
}

func exportJSON(dataset model.ExportDataset) ([]byte, error) {
	payload := map[string]any{
		"generatedAt": dataset.GeneratedAt.Format(time.RFC3339),
	}
	if dataset.Clients != nil {
		payload["clients"] = dataset.Clients
	}
	if dataset.Contracts != nil {
		payload["contracts"] = dataset.Contracts
	}
	if dataset.Orders != nil {
		payload["orders"] = dataset.Orders
	}
	return json.MarshalIndent(payload, "", "  ")
}

func exportCSV(dataset model.ExportDataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	switch {
	case dataset.Clients != nil:
		if err := w.Write([]string{"id", "name", "email", "phone", "address", "created_at"}); err != nil {
			return nil, err
		}
		for _, c := range dataset.Clients {
			record := []string{
				strconv.FormatInt(c.ID, 10), c.Name, c.Email, c.Phone, c.Address,
				c.CreatedAt.Format(time.RFC3339),
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
	case dataset.Contracts != nil:
		header := []string{
			"id", "correlative_number", "client", "total_volume", "attended_volume",
			"pending_volume", "sale_price", "start_date", "end_date", "status",
		}
		if err := w.Write(header); err != nil {
			return nil, err
		}
		for _, c := range dataset.Contracts {
			record := []string{
				strconv.FormatInt(c.ID, 10), c.CorrelativeNumber, c.ClientName,
				formatVolume(c.TotalVolume), formatVolume(c.AttendedVolume), formatVolume(c.PendingVolume),
				formatVolume(c.SalePrice),
				c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"),
				string(c.Status),
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
	case dataset.Orders != nil:
		header := []string{
			"id", "contract", "client", "volume", "price", "order_date",
			"delivery_date", "status", "notes",
		}
		if err := w.Write(header); err != nil {
			return nil, err
		}
		for _, o := range dataset.Orders {
			correlative, client := "", ""
			if o.Contract != nil {
				correlative = o.Contract.CorrelativeNumber
				client = o.Contract.ClientName
			}
			delivery := ""
			if o.DeliveryDate != nil {
				delivery = o.DeliveryDate.Format("2006-01-02")
			}
			record := []string{
				strconv.FormatInt(o.ID, 10), correlative, client,
				formatVolume(o.Volume), formatVolume(o.Price),
				o.OrderDate.Format("2006-01-02"), delivery,
				string(o.Status), o.Notes,
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatVolume(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
