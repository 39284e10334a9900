package handler

import (
	"net/http"

	"github.com/bitfantasy/nimo-billing/internal/billing/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler 报表处理器
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// ExportOutstanding GET /reports/outstanding.xlsx?customer_id=&broker_id=&date=
func (h *ReportHandler) ExportOutstanding(c *gin.Context) {
	customerID := c.Query("customer_id")
	brokerID := c.Query("broker_id")
	if customerID != "" && brokerID != "" {
		BadRequest(c, "customer_id and broker_id are mutually exclusive")
		return
	}

	asOf, ok := dateQuery(c)
	if !ok {
		BadRequest(c, "invalid date")
		return
	}

	f, filename, err := h.svc.ExportOutstanding(c.Request.Context(), customerID, brokerID, asOf)
	if err != nil {
		Fail(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
