package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/models"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		format     Format
		recipients []string
		want       Plan
	}{
		{"json without recipients renders inline", JSON, nil, Plan{Mode: Inline}},
		{"json with recipients is emailed", JSON, []string{"a@example.com"}, Plan{Mode: Email, SendEmail: true}},
		{"csv downloads", CSV, nil, Plan{Mode: Download}},
		{"csv downloads regardless of recipients", CSV, []string{"a@example.com"}, Plan{Mode: Download, SendEmail: true}},
		{"pdf downloads", PDF, nil, Plan{Mode: Download}},
		{"pdf with recipients also mails", PDF, []string{"a@example.com"}, Plan{Mode: Download, SendEmail: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.format, tt.recipients))
		})
	}
}

func TestRequestNormalize(t *testing.T) {
	req := Request{Type: Sales}
	require.NoError(t, req.Normalize())
	assert.Equal(t, JSON, req.Format)

	assert.ErrorIs(t, (&Request{Type: "weather"}).Normalize(), ErrUnknownType)
	assert.ErrorIs(t, (&Request{Type: Sales, Format: "xls"}).Normalize(), ErrUnknownFormat)
	assert.ErrorIs(t, (&Request{Type: Sales, StartDate: "yesterday"}).Normalize(), ErrInvalidRange)
	assert.ErrorIs(t, (&Request{Type: Sales, StartDate: "2024-02-01", EndDate: "2024-01-01"}).Normalize(), ErrInvalidRange)
}

func TestRangeEndDateCoversWholeDay(t *testing.T) {
	from, to, err := Request{StartDate: "2024-01-01", EndDate: "2024-01-31"}.Range()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), *to)
}

func setupReportDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(testDB))
	return testDB
}

func seedOrders(t *testing.T, d *gorm.DB) {
	day := func(n int) time.Time { return time.Date(2024, 1, n, 12, 0, 0, 0, time.UTC) }

	orders := []models.Order{
		{Status: models.OrderCompleted, Subtotal: 30, DiscountTotal: 3, Total: 27, CreatedAt: day(1), Items: []models.OrderItem{
			{MenuItemID: 1, Name: "Nyama Choma", Quantity: 1, UnitPrice: 20, Price: 18},
			{MenuItemID: 2, Name: "Chapati", Quantity: 5, UnitPrice: 2, Price: 1.8},
		}},
		{Status: models.OrderPending, Subtotal: 4, Total: 4, CreatedAt: day(1), Items: []models.OrderItem{
			{MenuItemID: 2, Name: "Chapati", Quantity: 2, UnitPrice: 2, Price: 2},
		}},
		{Status: models.OrderCancelled, Subtotal: 40, Total: 40, CreatedAt: day(2), Items: []models.OrderItem{
			{MenuItemID: 1, Name: "Nyama Choma", Quantity: 2, UnitPrice: 20, Price: 20},
		}},
		{Status: models.OrderCompleted, Subtotal: 20, Total: 20, CreatedAt: day(3), Items: []models.OrderItem{
			{MenuItemID: 1, Name: "Nyama Choma", Quantity: 1, UnitPrice: 20, Price: 20},
		}},
		{Status: models.OrderCompleted, Subtotal: 99, Total: 99, CreatedAt: day(20), Items: []models.OrderItem{
			{MenuItemID: 3, Name: "Tusker", Quantity: 9, UnitPrice: 11, Price: 11},
		}},
	}
	require.NoError(t, d.Create(&orders).Error)
}

func TestGenerateSales(t *testing.T) {
	d := setupReportDB(t)
	seedOrders(t, d)

	rep, err := Generate(context.Background(), d, Request{Type: Sales, StartDate: "2024-01-01", EndDate: "2024-01-10"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Sales report", rep.Title)
	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, [][]string{
		{"2024-01-01", "2", "34.00", "3.00", "31.00"},
		{"2024-01-03", "1", "20.00", "0.00", "20.00"},
	}, rep.Rows)
	assert.Equal(t, []Metric{
		{Label: "Orders", Value: "3"},
		{Label: "Revenue", Value: "51.00"},
		{Label: "Average order value", Value: "17.00"},
	}, rep.Summary)
}

func TestGeneratePopularItems(t *testing.T) {
	d := setupReportDB(t)
	seedOrders(t, d)

	rep, err := Generate(context.Background(), d, Request{Type: PopularItems, EndDate: "2024-01-10"}, time.Now())
	require.NoError(t, err)

	require.Len(t, rep.Rows, 2)
	// Chapati: 7 sold across two orders; the cancelled order does not count.
	assert.Equal(t, []string{"2", "Chapati", "2", "7", "13.00"}, rep.Rows[0])
	assert.Equal(t, []string{"1", "Nyama Choma", "2", "2", "38.00"}, rep.Rows[1])
	assert.Contains(t, rep.Summary, Metric{Label: "Top item", Value: "Chapati"})
}

func TestGenerateInventory(t *testing.T) {
	d := setupReportDB(t)
	require.NoError(t, d.Create(&[]models.InventoryItem{
		{Name: "Rice", Quantity: 50, Unit: "kg", ReorderLevel: 10, CostPerUnit: 1.5},
		{Name: "Flour", Quantity: 4, Unit: "kg", ReorderLevel: 5, CostPerUnit: 2},
	}).Error)

	rep, err := Generate(context.Background(), d, Request{Type: Inventory}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, []string{"Flour", "4", "kg", "5", "2.00", "8.00", "yes"}, rep.Rows[0])
	assert.Equal(t, []string{"Rice", "50", "kg", "10", "1.50", "75.00", "no"}, rep.Rows[1])
	assert.Contains(t, rep.Summary, Metric{Label: "Low stock", Value: "1"})
	assert.Contains(t, rep.Summary, Metric{Label: "Stock value", Value: "83.00"})
}

func TestGenerateReservations(t *testing.T) {
	d := setupReportDB(t)
	at := time.Date(2024, 5, 4, 19, 0, 0, 0, time.UTC)
	require.NoError(t, d.Create(&[]models.Reservation{
		{Name: "Achieng", Phone: "1", PartySize: 4, ReservedAt: at, Status: models.ReservationConfirmed},
		{Name: "Kamau", Phone: "2", PartySize: 2, ReservedAt: at.Add(time.Hour), Status: models.ReservationCancelled},
	}).Error)

	rep, err := Generate(context.Background(), d, Request{Type: Reservations}, time.Now())
	require.NoError(t, err)

	assert.Len(t, rep.Rows, 2)
	assert.Equal(t, []Metric{
		{Label: "Reservations", Value: "2"},
		{Label: "Confirmed", Value: "1"},
		{Label: "Expected guests", Value: "4"},
	}, rep.Summary)
}

func sampleReport() *Report {
	return &Report{
		ID:          "r-1",
		Type:        Sales,
		Title:       "Sales report",
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Columns:     []string{"Date", "Revenue"},
		Rows:        [][]string{{"2024-01-01", "10.00"}, {"2024-01-02", "5.50"}},
		Summary:     []Metric{{Label: "Revenue", Value: "15.50"}},
	}
}

func TestRenderCSV(t *testing.T) {
	f, err := Render(sampleReport(), CSV)
	require.NoError(t, err)
	assert.Equal(t, "sales-report-20240102-030405.csv", f.Name)
	assert.Equal(t, "text/csv", f.ContentType)

	r := csv.NewReader(bytes.NewReader(f.Data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Revenue"},
		{"2024-01-01", "10.00"},
		{"2024-01-02", "5.50"},
		{"Revenue", "15.50"},
	}, records)
}

func TestRenderPDF(t *testing.T) {
	f, err := Render(sampleReport(), PDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.True(t, bytes.HasPrefix(f.Data, []byte("%PDF-")))
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	_, err := Render(sampleReport(), "xls")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
