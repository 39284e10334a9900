package handler

import (
	"github.com/bitfantasy/nimo-billing/internal/billing/service"
	"github.com/gin-gonic/gin"
)

// PaymentHandler 收款单处理器
type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// SavePayment POST /payments — ID 为空新建，否则整单覆盖保存
func (h *PaymentHandler) SavePayment(c *gin.Context) {
	var req service.SavePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	payment, err := h.svc.Save(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	if req.ID == "" {
		Created(c, payment)
		return
	}
	Success(c, payment)
}

// GetPayment GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, payment)
}

// ListPayments GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"customer_id": c.Query("customer_id"),
		"from":        c.Query("from"),
		"to":          c.Query("to"),
		"search":      c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages(total, pageSize),
		},
	})
}

// DeletePayment DELETE /payments/:id
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// AutoAllocate POST /payments/auto-allocate — 瀑布分配试算，不落库
func (h *PaymentHandler) AutoAllocate(c *gin.Context) {
	var req service.AutoAllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.CustomerID != "" && req.BrokerID != "" {
		BadRequest(c, "customer_id and broker_id are mutually exclusive")
		return
	}

	result, err := h.svc.AutoAllocate(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}
