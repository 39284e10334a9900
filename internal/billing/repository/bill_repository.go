package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BillRepository 销售单仓储
type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) *BillRepository {
	return &BillRepository{db: db}
}

// FindByID 根据ID查找销售单（含行项）
func (r *BillRepository) FindByID(ctx context.Context, id string) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Customer").
		Preload("Broker").
		Where("id = ?", id).
		First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// FindAll 查询销售单列表
func (r *BillRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Bill{})

	if customerID := filters["customer_id"]; customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if from := filters["from"]; from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("bill_date >= ?", t)
		}
	}
	if to := filters["to"]; to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("bill_date <= ?", t)
		}
	}
	if search := filters["search"]; search != "" {
		query = query.Where("bill_no LIKE ? OR customer_name LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Order("bill_date DESC, created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&bills).Error

	return bills, total, err
}

// Save 保存销售单：表头与行项在同一事务内写入。
// 编辑时整组替换行项（先删旧行再插当前行），失败则整体回滚。
func (r *BillRepository) Save(ctx context.Context, bill *entity.Bill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(bill).Error; err != nil {
			return err
		}
		if err := tx.Where("bill_id = ?", bill.ID).Delete(&entity.BillLine{}).Error; err != nil {
			return err
		}
		for i := range bill.Lines {
			bill.Lines[i].BillID = bill.ID
			bill.Lines[i].SortOrder = i
			if err := tx.Create(&bill.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete 删除销售单：先删行项再删表头
func (r *BillRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bill entity.Bill
		if err := tx.Where("id = ?", id).First(&bill).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("bill_id = ?", id).Delete(&entity.BillLine{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Bill{}).Error
	})
}

// GenerateCode 生成单号 BILL-{year}-{4位}
func (r *BillRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("BILL-%s-", year)

	// 序号超过 9999 后编号变长，纯字典序取 MAX 会退回短编号，
	// 先按长度再按字典序排，保证取到当前最大序号
	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Bill{}).
		Select("bill_no").
		Where("bill_no LIKE ?", prefix+"%").
		Order("length(bill_no) DESC, bill_no DESC").
		Limit(1).
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "BILL-"+year+"-%d", &seq)
	}
	seq++
	return fmt.Sprintf("BILL-%s-%04d", year, seq), nil
}

// SumAllocations 汇总某销售单的累计已收（跨全部收款单）
func (r *BillRepository) SumAllocations(ctx context.Context, billID string) (decimal.Decimal, error) {
	return r.sumAllocations(ctx, billID, "")
}

// SumAllocationsExcluding 汇总某销售单的累计已收，但剔除指定收款单自身的贡献。
// 编辑收款单重算分配行时使用，避免重复计入自身。
func (r *BillRepository) SumAllocationsExcluding(ctx context.Context, billID, paymentID string) (decimal.Decimal, error) {
	return r.sumAllocations(ctx, billID, paymentID)
}

func (r *BillRepository) sumAllocations(ctx context.Context, billID, excludePaymentID string) (decimal.Decimal, error) {
	var row struct {
		Paid decimal.Decimal
	}
	query := r.db.WithContext(ctx).
		Model(&entity.PaymentAllocation{}).
		Select("COALESCE(SUM(allocated_amount), 0) AS paid").
		Where("bill_id = ?", billID)
	if excludePaymentID != "" {
		query = query.Where("payment_id <> ?", excludePaymentID)
	}
	if err := query.Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Paid, nil
}

// PaidSums 按销售单分组汇总已收金额
type PaidSums map[string]decimal.Decimal

// FindOutstanding 查询候选未清销售单（按单据日期升序）及各自累计已收。
// customerID/brokerID 二者至多一个非空；都为空则查全部。
// 是否真正未清（净额-已收 > 阈值）由服务层结合日期调整后判定。
func (r *BillRepository) FindOutstanding(ctx context.Context, customerID, brokerID string) ([]entity.Bill, PaidSums, error) {
	query := r.db.WithContext(ctx).Model(&entity.Bill{})
	if customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if brokerID != "" {
		query = query.Where("broker_id = ?", brokerID)
	}

	var bills []entity.Bill
	if err := query.Order("bill_date ASC, created_at ASC").Find(&bills).Error; err != nil {
		return nil, nil, err
	}
	if len(bills) == 0 {
		return bills, PaidSums{}, nil
	}

	ids := make([]string, len(bills))
	for i := range bills {
		ids[i] = bills[i].ID
	}

	var rows []struct {
		BillID string
		Paid   decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&entity.PaymentAllocation{}).
		Select("bill_id, COALESCE(SUM(allocated_amount), 0) AS paid").
		Where("bill_id IN ?", ids).
		Group("bill_id").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	sums := make(PaidSums, len(rows))
	for _, row := range rows {
		sums[row.BillID] = row.Paid
	}
	return bills, sums, nil
}
