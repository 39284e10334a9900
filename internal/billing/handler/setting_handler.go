package handler

import (
	"github.com/bitfantasy/nimo-billing/internal/billing/service"
	"github.com/gin-gonic/gin"
)

// SettingHandler 设置处理器
type SettingHandler struct {
	svc *service.SettingService
}

func NewSettingHandler(svc *service.SettingService) *SettingHandler {
	return &SettingHandler{svc: svc}
}

// ListSettings GET /settings
func (h *SettingHandler) ListSettings(c *gin.Context) {
	settings, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, settings)
}

// GetSetting GET /settings/:key
func (h *SettingHandler) GetSetting(c *gin.Context) {
	value, err := h.svc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"key": c.Param("key"), "value": value})
}

type setSettingRequest struct {
	Value string `json:"value"`
}

// SetSetting PUT /settings/:key
func (h *SettingHandler) SetSetting(c *gin.Context) {
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.svc.Set(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
