package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/bitfantasy/nimo-billing/internal/billing/repository"
	"github.com/bitfantasy/nimo-billing/internal/billing/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Bill    *BillHandler
	Payment *PaymentHandler
	Master  *MasterHandler
	Setting *SettingHandler
	Report  *ReportHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(
	billSvc *service.BillService,
	paymentSvc *service.PaymentService,
	masterSvc *service.MasterService,
	settingSvc *service.SettingService,
	reportSvc *service.ReportService,
) *Handlers {
	return &Handlers{
		Bill:    NewBillHandler(billSvc),
		Payment: NewPaymentHandler(paymentSvc),
		Master:  NewMasterHandler(masterSvc),
		Setting: NewSettingHandler(settingSvc),
		Report:  NewReportHandler(reportSvc),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// Fail 按错误类别映射响应：校验失败与重名 40000，
// 目标不存在 40400，其余（含事务回滚）50000。
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, repository.ErrDuplicateName):
		BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}

// dateQuery 解析 date 查询参数，缺省为今天
func dateQuery(c *gin.Context) (time.Time, bool) {
	value := c.Query("date")
	if value == "" {
		return time.Now(), true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
