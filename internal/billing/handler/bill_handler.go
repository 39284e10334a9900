package handler

import (
	"github.com/bitfantasy/nimo-billing/internal/billing/service"
	"github.com/gin-gonic/gin"
)

// BillHandler 销售单处理器
type BillHandler struct {
	svc *service.BillService
}

func NewBillHandler(svc *service.BillService) *BillHandler {
	return &BillHandler{svc: svc}
}

// SaveBill POST /bills — ID 为空新建，否则整单覆盖保存
func (h *BillHandler) SaveBill(c *gin.Context) {
	var req service.SaveBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	bill, err := h.svc.Save(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	if req.ID == "" {
		Created(c, bill)
		return
	}
	Success(c, bill)
}

// GetBill GET /bills/:id
func (h *BillHandler) GetBill(c *gin.Context) {
	bill, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, bill)
}

// ListBills GET /bills
func (h *BillHandler) ListBills(c *gin.Context) {
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

// DeleteBill DELETE /bills/:id
func (h *BillHandler) DeleteBill(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// GetCharges GET /bills/:id/charges?date= — 利息/折扣试算
func (h *BillHandler) GetCharges(c *gin.Context) {
	evalDate, ok := dateQuery(c)
	if !ok {
		BadRequest(c, "invalid date")
		return
	}

	charges, err := h.svc.Charges(c.Request.Context(), c.Param("id"), evalDate)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, charges)
}

// ListOutstanding GET /bills/outstanding?customer_id=&broker_id=&date=
func (h *BillHandler) ListOutstanding(c *gin.Context) {
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

	bills, err := h.svc.Outstanding(c.Request.Context(), customerID, brokerID, asOf)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, bills)
}
