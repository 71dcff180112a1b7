package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/report"
)

func seedSales(t *testing.T, env *testEnv) {
	orders := []models.Order{
		{Status: models.OrderCompleted, Subtotal: 20, Total: 18, DiscountTotal: 2, CreatedAt: fixedNow.Add(-26 * time.Hour)},
		{Status: models.OrderCompleted, Subtotal: 12, Total: 12, CreatedAt: fixedNow.Add(-2 * time.Hour)},
		{Status: models.OrderCancelled, Subtotal: 50, Total: 50, CreatedAt: fixedNow.Add(-time.Hour)},
	}
	require.NoError(t, env.db.Create(&orders).Error)
}

func TestGenerateReportHandler(t *testing.T) {
	env := setupTestRouter(t)
	manager := env.staff(t, models.RoleManager)
	seedSales(t, env)

	t.Run("JSON without recipients answers inline", func(t *testing.T) {
		w := manager.do(http.MethodPost, "/api/reports/generate", report.Request{Type: report.Sales})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		rep := decode[report.Report](t, w)
		assert.Equal(t, report.Sales, rep.Type)
		assert.NotEmpty(t, rep.ID)
		require.Len(t, rep.Rows, 2)
		assert.Equal(t, []string{"2024-05-31", "1", "20.00", "2.00", "18.00"}, rep.Rows[0])
		assert.Equal(t, []string{"2024-06-01", "1", "12.00", "0.00", "12.00"}, rep.Rows[1])
		assert.Contains(t, rep.Summary, report.Metric{Label: "Revenue", Value: "30.00"})
		assert.Equal(t, 0, env.notified.emailCount())
	})

	t.Run("The date range narrows the report", func(t *testing.T) {
		w := manager.do(http.MethodPost, "/api/reports/generate", report.Request{Type: report.Sales, StartDate: "2024-06-01", EndDate: "2024-06-01"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[report.Report](t, w).Rows, 1)
	})

	t.Run("CSV comes back as a download", func(t *testing.T) {
		w := manager.do(http.MethodPost, "/api/reports/generate", report.Request{Type: report.Sales, Format: report.CSV})
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="sales-report-`)
		assert.True(t, strings.HasPrefix(w.Body.String(), "Date,Orders,Subtotal,Discounts,Revenue\n"))
	})

	t.Run("PDF with recipients is downloaded and mailed", func(t *testing.T) {
		w := manager.do(http.MethodPost, "/api/reports/generate", report.Request{Type: report.Sales, Format: report.PDF, Recipients: []string{"owner@example.com"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

		require.Eventually(t, func() bool { return env.notified.emailCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("JSON with recipients is only mailed", func(t *testing.T) {
		w := manager.do(http.MethodPost, "/api/reports/generate", report.Request{Type: report.Sales, Recipients: []string{"owner@example.com", "chef@example.com"}})
		require.Equal(t, http.StatusAccepted, w.Code)

		body := decode[map[string]interface{}](t, w)
		assert.Equal(t, "report will be emailed", body["message"])
		assert.NotEmpty(t, body["reportId"])

		require.Eventually(t, func() bool { return env.notified.emailCount() == 2 }, 2*time.Second, 10*time.Millisecond)
		env.notified.mu.Lock()
		defer env.notified.mu.Unlock()
		mail := env.notified.emails[1]
		assert.Equal(t, []string{"owner@example.com", "chef@example.com"}, mail.To)
		assert.Equal(t, "Sales report", mail.Subject)
		require.Len(t, mail.Attachments, 1)
		assert.Equal(t, "application/json", mail.Attachments[0].ContentType)
		assert.True(t, strings.HasSuffix(mail.Attachments[0].Filename, ".json"))
	})

	t.Run("Bad requests are 400", func(t *testing.T) {
		cases := []report.Request{
			{Type: "profit"},
			{Type: report.Sales, Format: "xlsx"},
			{Type: report.Sales, StartDate: "last tuesday"},
			{Type: report.Sales, StartDate: "2024-06-02", EndDate: "2024-06-01"},
			{Type: report.Sales, Recipients: []string{"not-an-address"}},
		}
		for _, req := range cases {
			w := manager.do(http.MethodPost, "/api/reports/generate", req)
			assert.Equal(t, http.StatusBadRequest, w.Code, req)
		}
	})

	t.Run("Cashiers cannot run reports", func(t *testing.T) {
		w := env.staff(t, models.RoleCashier).do(http.MethodPost, "/api/reports/generate", report.Request{Type: report.Sales})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
