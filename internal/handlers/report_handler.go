package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/logger"
	"github.com/pryme0/vyb-q-admin/internal/metrics"
	"github.com/pryme0/vyb-q-admin/internal/notifier"
	"github.com/pryme0/vyb-q-admin/internal/report"
)

// POST /api/reports/generate
// JSON without recipients answers inline. CSV and PDF always come back as a
// download and are mailed as well when recipients are given. JSON with
// recipients is only mailed.
func GenerateReport(c *gin.Context) {
	var req report.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Normalize(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := report.Generate(c.Request.Context(), db.DB, req, now())
	if err != nil {
		if errors.Is(err, report.ErrInvalidRange) || errors.Is(err, report.ErrUnknownType) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	plan := report.Decide(req.Format, req.Recipients)
	metrics.ReportGenerated(string(req.Format), string(plan.Mode))
	logger.L().Info("report generated",
		zap.String("report_id", rep.ID),
		zap.String("type", string(rep.Type)),
		zap.String("format", string(req.Format)),
		zap.String("mode", string(plan.Mode)),
		zap.Int("rows", len(rep.Rows)))

	if plan.Mode == report.Inline {
		c.JSON(http.StatusOK, rep)
		return
	}

	file, err := report.Render(rep, req.Format)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if plan.SendEmail {
		recipients := append([]string(nil), req.Recipients...)
		msg := notifier.ReportEmail(recipients, rep.Title, notifier.Attachment{
			Filename:    file.Name,
			ContentType: file.ContentType,
			Data:        file.Data,
		})
		background("report email", func(ctx context.Context) error {
			return notify.SendEmail(ctx, msg)
		})
	}

	if plan.Mode == report.Email {
		c.JSON(http.StatusAccepted, gin.H{
			"message":    "report will be emailed",
			"reportId":   rep.ID,
			"recipients": req.Recipients,
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
