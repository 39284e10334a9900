package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer 客户
type Customer struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	Name       string `json:"name" gorm:"size:128;uniqueIndex;not null"`
	Address    string `json:"address" gorm:"size:256"`
	Phone      string `json:"phone" gorm:"size:32"`
	CreditDays int    `json:"credit_days" gorm:"default:0"`
	BrokerID   string `json:"broker_id" gorm:"size:32;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Broker *Broker `json:"broker,omitempty" gorm:"foreignKey:BrokerID"`
}

func (Customer) TableName() string {
	return "billing_customers"
}

// Broker 经纪人
type Broker struct {
	ID         string          `json:"id" gorm:"primaryKey;size:32"`
	Name       string          `json:"name" gorm:"size:128;uniqueIndex;not null"`
	Phone      string          `json:"phone" gorm:"size:32"`
	Commission decimal.Decimal `json:"commission" gorm:"type:decimal(6,2)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Broker) TableName() string {
	return "billing_brokers"
}

// Item 商品
type Item struct {
	ID      string          `json:"id" gorm:"primaryKey;size:32"`
	Name    string          `json:"name" gorm:"size:128;uniqueIndex;not null"`
	Unit    string          `json:"unit" gorm:"size:20"`
	Rate    decimal.Decimal `json:"rate" gorm:"type:decimal(15,2)"`
	Charges decimal.Decimal `json:"charges" gorm:"type:decimal(15,2)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "billing_items"
}
