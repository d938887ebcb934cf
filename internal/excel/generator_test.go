package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ovapp/sales-ledger/internal/model"
)

func testDataset() model.ExportDataset {
	delivery := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	return model.ExportDataset{
		GeneratedAt: time.Date(2026, 4, 20, 10, 30, 0, 0, time.UTC),
		Clients: []model.Client{
			{ID: 1, Name: "Acme Corp", Email: "ops@acme.test", Phone: "+57 300 1111111"},
		},
		Contracts: []model.ContractWithClient{
			{
				Contract: model.Contract{
					ID:                1,
					CorrelativeNumber: "000001",
					TotalVolume:       1000,
					AttendedVolume:    300,
					PendingVolume:     700,
					SalePrice:         150,
					StartDate:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
					EndDate:           time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
					Status:            model.ContractStatusActive,
				},
				ClientName: "Acme Corp",
			},
		},
		Orders: []model.OrderWithContract{
			{
				PurchaseOrder: model.PurchaseOrder{
					ID:           1,
					ContractID:   1,
					Volume:       300,
					Price:        150,
					OrderDate:    time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
					DeliveryDate: &delivery,
					Status:       model.OrderStatusDelivered,
					Notes:        "first batch",
				},
				Contract: &model.OrderContractInfo{CorrelativeNumber: "000001", ClientName: "Acme Corp"},
			},
		},
	}
}

func TestGenerateWorkbook(t *testing.T) {
	content, err := NewGenerator().Generate(testDataset())
	require.NoError(t, err)
	require.NotEmpty(t, content)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	assert.ElementsMatch(t, []string{"Summary", "Clients", "Contracts", "Orders"}, file.GetSheetList())

	name, err := file.GetCellValue("Clients", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", name)

	number, err := file.GetCellValue("Contracts", "A2")
	require.NoError(t, err)
	assert.Equal(t, "000001", number)

	status, err := file.GetCellValue("Orders", "H2")
	require.NoError(t, err)
	assert.Equal(t, "delivered", status)
}

func TestGenerateSkipsUnselectedSheets(t *testing.T) {
	dataset := testDataset()
	dataset.Clients = nil
	dataset.Orders = nil

	content, err := NewGenerator().Generate(dataset)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	assert.ElementsMatch(t, []string{"Summary", "Contracts"}, file.GetSheetList())
}
