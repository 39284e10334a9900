package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository 收款单仓储
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// FindByID 根据ID查找收款单（含分配行）
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.db.WithContext(ctx).
		Preload("Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Customer").
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindAll 查询收款单列表
func (r *PaymentRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Payment, int64, error) {
	var payments []entity.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Payment{})

	if customerID := filters["customer_id"]; customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if from := filters["from"]; from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("payment_date >= ?", t)
		}
	}
	if to := filters["to"]; to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("payment_date <= ?", t)
		}
	}
	if search := filters["search"]; search != "" {
		query = query.Where("payment_no LIKE ? OR customer_name LIKE ? OR reference LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
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
		Preload("Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Order("payment_date DESC, created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&payments).Error

	return payments, total, err
}

// Save 保存收款单：表头与分配行在同一事务内写入，
// 并在同一事务里刷新受影响销售单的已收缓存列。
func (r *PaymentRepository) Save(ctx context.Context, payment *entity.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected := map[string]struct{}{}

		// 编辑时旧分配行涉及的销售单也要刷新缓存
		var prior []entity.PaymentAllocation
		if err := tx.Where("payment_id = ?", payment.ID).Find(&prior).Error; err != nil {
			return err
		}
		for i := range prior {
			affected[prior[i].BillID] = struct{}{}
		}

		if err := tx.Omit(clause.Associations).Save(payment).Error; err != nil {
			return err
		}
		if err := tx.Where("payment_id = ?", payment.ID).Delete(&entity.PaymentAllocation{}).Error; err != nil {
			return err
		}
		for i := range payment.Allocations {
			payment.Allocations[i].PaymentID = payment.ID
			payment.Allocations[i].SortOrder = i
			if err := tx.Create(&payment.Allocations[i]).Error; err != nil {
				return err
			}
			affected[payment.Allocations[i].BillID] = struct{}{}
		}

		for billID := range affected {
			if err := refreshPaidAmount(tx, billID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete 删除收款单：先删分配行再删表头，并刷新受影响销售单的已收缓存列
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment entity.Payment
		if err := tx.Where("id = ?", id).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var allocations []entity.PaymentAllocation
		if err := tx.Where("payment_id = ?", id).Find(&allocations).Error; err != nil {
			return err
		}

		if err := tx.Where("payment_id = ?", id).Delete(&entity.PaymentAllocation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&entity.Payment{}).Error; err != nil {
			return err
		}

		for i := range allocations {
			if err := refreshPaidAmount(tx, allocations[i].BillID); err != nil {
				return err
			}
		}
		return nil
	})
}

// GenerateCode 生成收款单号 RCP-{year}-{4位}
func (r *PaymentRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("RCP-%s-", year)

	// 序号超过 9999 后编号变长，按长度优先排序取当前最大序号
	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Payment{}).
		Select("payment_no").
		Where("payment_no LIKE ?", prefix+"%").
		Order("length(payment_no) DESC, payment_no DESC").
		Limit(1).
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "RCP-"+year+"-%d", &seq)
	}
	seq++
	return fmt.Sprintf("RCP-%s-%04d", year, seq), nil
}

// refreshPaidAmount 以分配行汇总值刷新销售单的已收缓存列（仅供展示）
func refreshPaidAmount(tx *gorm.DB, billID string) error {
	return tx.Model(&entity.Bill{}).
		Where("id = ?", billID).
		Update("paid_amount", tx.Session(&gorm.Session{NewDB: true}).
			Model(&entity.PaymentAllocation{}).
			Select("COALESCE(SUM(allocated_amount), 0)").
			Where("bill_id = ?", billID),
		).Error
}
