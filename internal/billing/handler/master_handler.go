package handler

import (
	"github.com/bitfantasy/nimo-billing/internal/billing/service"
	"github.com/gin-gonic/gin"
)

// MasterHandler 基础档案处理器（客户/经纪人/商品）
type MasterHandler struct {
	svc *service.MasterService
}

func NewMasterHandler(svc *service.MasterService) *MasterHandler {
	return &MasterHandler{svc: svc}
}

// === 客户 ===

func (h *MasterHandler) SaveCustomer(c *gin.Context) {
	var req service.SaveCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	customer, err := h.svc.SaveCustomer(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	if req.ID == "" {
		Created(c, customer)
		return
	}
	Success(c, customer)
}

func (h *MasterHandler) GetCustomer(c *gin.Context) {
	customer, err := h.svc.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, customer)
}

func (h *MasterHandler) ListCustomers(c *gin.Context) {
	customers, err := h.svc.ListCustomers(c.Request.Context(), c.Query("search"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, customers)
}

func (h *MasterHandler) DeleteCustomer(c *gin.Context) {
	if err := h.svc.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// === 经纪人 ===

func (h *MasterHandler) SaveBroker(c *gin.Context) {
	var req service.SaveBrokerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	broker, err := h.svc.SaveBroker(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	if req.ID == "" {
		Created(c, broker)
		return
	}
	Success(c, broker)
}

func (h *MasterHandler) GetBroker(c *gin.Context) {
	broker, err := h.svc.GetBroker(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, broker)
}

func (h *MasterHandler) ListBrokers(c *gin.Context) {
	brokers, err := h.svc.ListBrokers(c.Request.Context(), c.Query("search"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, brokers)
}

func (h *MasterHandler) DeleteBroker(c *gin.Context) {
	if err := h.svc.DeleteBroker(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// === 商品 ===

func (h *MasterHandler) SaveItem(c *gin.Context) {
	var req service.SaveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	item, err := h.svc.SaveItem(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	if req.ID == "" {
		Created(c, item)
		return
	}
	Success(c, item)
}

func (h *MasterHandler) GetItem(c *gin.Context) {
	item, err := h.svc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, item)
}

func (h *MasterHandler) ListItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context(), c.Query("search"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, items)
}

func (h *MasterHandler) DeleteItem(c *gin.Context) {
	if err := h.svc.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
