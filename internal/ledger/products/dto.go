package products

import "github.com/shopspring/decimal"

// ProductForm is the payload for POST and PUT /product.
type ProductForm struct {
	Code         string          `json:"product_code" validate:"required,max=30"`
	Name         string          `json:"product_name" validate:"required,max=150"`
	Type         string          `json:"product_type" validate:"max=50"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	AdminFee     decimal.Decimal `json:"admin_fee"`
	OpeningFee   decimal.Decimal `json:"opening_fee"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

func (f ProductForm) product() Product {
	return Product{
		Code:         f.Code,
		Name:         f.Name,
		Type:         f.Type,
		InterestRate: f.InterestRate,
		AdminFee:     f.AdminFee,
		OpeningFee:   f.OpeningFee,
		IsActive:     f.IsActive == nil || *f.IsActive,
	}
}
