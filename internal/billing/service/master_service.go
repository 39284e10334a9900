package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/bitfantasy/nimo-billing/internal/billing/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MasterService 基础档案服务（客户/经纪人/商品）
type MasterService struct {
	customers *repository.CustomerRepository
	brokers   *repository.BrokerRepository
	items     *repository.ItemRepository
}

func NewMasterService(
	customers *repository.CustomerRepository,
	brokers *repository.BrokerRepository,
	items *repository.ItemRepository,
) *MasterService {
	return &MasterService{customers: customers, brokers: brokers, items: items}
}

// SaveCustomerRequest 创建/编辑客户请求
type SaveCustomerRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name" binding:"required"`
	Address    string  `json:"address"`
	Phone      string  `json:"phone"`
	CreditDays int     `json:"credit_days"`
	BrokerID   *string `json:"broker_id"`
}

func (s *MasterService) SaveCustomer(ctx context.Context, req *SaveCustomerRequest) (*entity.Customer, error) {
	if req.CreditDays < 0 {
		return nil, fmt.Errorf("%w: credit days must not be negative", ErrValidation)
	}

	var customer *entity.Customer
	if req.ID == "" {
		customer = &entity.Customer{ID: uuid.New().String()[:32]}
	} else {
		existing, err := s.customers.FindByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		existing.Broker = nil
		customer = existing
	}

	customer.Name = req.Name
	customer.Address = req.Address
	customer.Phone = req.Phone
	customer.CreditDays = req.CreditDays
	if req.BrokerID != nil {
		if *req.BrokerID != "" {
			if _, err := s.brokers.FindByID(ctx, *req.BrokerID); err != nil {
				return nil, fmt.Errorf("broker %s: %w", *req.BrokerID, err)
			}
		}
		customer.BrokerID = *req.BrokerID
	}

	var err error
	if req.ID == "" {
		err = s.customers.Create(ctx, customer)
	} else {
		err = s.customers.Update(ctx, customer)
	}
	if err != nil {
		return nil, err
	}
	return s.customers.FindByID(ctx, customer.ID)
}

func (s *MasterService) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func (s *MasterService) ListCustomers(ctx context.Context, search string) ([]entity.Customer, error) {
	return s.customers.FindAll(ctx, search)
}

func (s *MasterService) DeleteCustomer(ctx context.Context, id string) error {
	return s.customers.Delete(ctx, id)
}

// SaveBrokerRequest 创建/编辑经纪人请求
type SaveBrokerRequest struct {
	ID         string          `json:"id"`
	Name       string          `json:"name" binding:"required"`
	Phone      string          `json:"phone"`
	Commission decimal.Decimal `json:"commission"`
}

func (s *MasterService) SaveBroker(ctx context.Context, req *SaveBrokerRequest) (*entity.Broker, error) {
	var broker *entity.Broker
	if req.ID == "" {
		broker = &entity.Broker{ID: uuid.New().String()[:32]}
	} else {
		existing, err := s.brokers.FindByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		broker = existing
	}

	broker.Name = req.Name
	broker.Phone = req.Phone
	broker.Commission = req.Commission

	var err error
	if req.ID == "" {
		err = s.brokers.Create(ctx, broker)
	} else {
		err = s.brokers.Update(ctx, broker)
	}
	if err != nil {
		return nil, err
	}
	return broker, nil
}

func (s *MasterService) GetBroker(ctx context.Context, id string) (*entity.Broker, error) {
	return s.brokers.FindByID(ctx, id)
}

func (s *MasterService) ListBrokers(ctx context.Context, search string) ([]entity.Broker, error) {
	return s.brokers.FindAll(ctx, search)
}

func (s *MasterService) DeleteBroker(ctx context.Context, id string) error {
	return s.brokers.Delete(ctx, id)
}

// SaveItemRequest 创建/编辑商品请求
type SaveItemRequest struct {
	ID      string          `json:"id"`
	Name    string          `json:"name" binding:"required"`
	Unit    string          `json:"unit"`
	Rate    decimal.Decimal `json:"rate"`
	Charges decimal.Decimal `json:"charges"`
}

func (s *MasterService) SaveItem(ctx context.Context, req *SaveItemRequest) (*entity.Item, error) {
	if req.Rate.IsNegative() || req.Charges.IsNegative() {
		return nil, fmt.Errorf("%w: rate and charges must not be negative", ErrValidation)
	}

	var item *entity.Item
	if req.ID == "" {
		item = &entity.Item{ID: uuid.New().String()[:32]}
	} else {
		existing, err := s.items.FindByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		item = existing
	}

	item.Name = req.Name
	item.Unit = req.Unit
	item.Rate = req.Rate
	item.Charges = req.Charges

	var err error
	if req.ID == "" {
		err = s.items.Create(ctx, item)
	} else {
		err = s.items.Update(ctx, item)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MasterService) GetItem(ctx context.Context, id string) (*entity.Item, error) {
	return s.items.FindByID(ctx, id)
}

func (s *MasterService) ListItems(ctx context.Context, search string) ([]entity.Item, error) {
	return s.items.FindAll(ctx, search)
}

func (s *MasterService) DeleteItem(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}
