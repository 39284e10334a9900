package entity

import "time"

// 设置键
const (
	SettingInterestRate   = "interest_rate"
	SettingDiscountRate   = "discount_rate"
	SettingCompanyName    = "company_name"
	SettingCompanyAddress = "company_address"
)

// Setting 自由文本设置项（利率、折扣率、公司信息等）
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey;size:64"`
	Value     string    `json:"value" gorm:"size:512"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "billing_settings"
}
