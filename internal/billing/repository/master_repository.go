package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"gorm.io/gorm"
)

// CustomerRepository 客户仓储
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).Preload("Broker").Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, search string) ([]entity.Customer, error) {
	query := r.db.WithContext(ctx).Model(&entity.Customer{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	var customers []entity.Customer
	err := query.Order("name ASC").Find(&customers).Error
	return customers, err
}

// Create 创建客户，名称重复返回 ErrDuplicateName
func (r *CustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	if err := r.checkName(ctx, customer.Name, ""); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	if err := r.checkName(ctx, customer.Name, customer.ID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) checkName(ctx context.Context, name, excludeID string) error {
	query := r.db.WithContext(ctx).Model(&entity.Customer{}).Where("name = ?", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateName
	}
	return nil
}

// BrokerRepository 经纪人仓储
type BrokerRepository struct {
	db *gorm.DB
}

func NewBrokerRepository(db *gorm.DB) *BrokerRepository {
	return &BrokerRepository{db: db}
}

func (r *BrokerRepository) FindByID(ctx context.Context, id string) (*entity.Broker, error) {
	var broker entity.Broker
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&broker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &broker, nil
}

func (r *BrokerRepository) FindAll(ctx context.Context, search string) ([]entity.Broker, error) {
	query := r.db.WithContext(ctx).Model(&entity.Broker{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	var brokers []entity.Broker
	err := query.Order("name ASC").Find(&brokers).Error
	return brokers, err
}

func (r *BrokerRepository) Create(ctx context.Context, broker *entity.Broker) error {
	if err := r.checkName(ctx, broker.Name, ""); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(broker).Error
}

func (r *BrokerRepository) Update(ctx context.Context, broker *entity.Broker) error {
	if err := r.checkName(ctx, broker.Name, broker.ID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(broker).Error
}

func (r *BrokerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Broker{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BrokerRepository) checkName(ctx context.Context, name, excludeID string) error {
	query := r.db.WithContext(ctx).Model(&entity.Broker{}).Where("name = ?", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateName
	}
	return nil
}

// ItemRepository 商品仓储
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) FindByID(ctx context.Context, id string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) FindAll(ctx context.Context, search string) ([]entity.Item, error) {
	query := r.db.WithContext(ctx).Model(&entity.Item{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	var items []entity.Item
	err := query.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *ItemRepository) Create(ctx context.Context, item *entity.Item) error {
	if err := r.checkName(ctx, item.Name, ""); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ItemRepository) Update(ctx context.Context, item *entity.Item) error {
	if err := r.checkName(ctx, item.Name, item.ID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ItemRepository) checkName(ctx context.Context, name, excludeID string) error {
	query := r.db.WithContext(ctx).Model(&entity.Item{}).Where("name = ?", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateName
	}
	return nil
}
