package models

// CardDetails 银行卡信息
type CardDetails struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVC        string `json:"cvc"`
	NameOnCard string `json:"nameOnCard"`
}

// CardDetailsPatch 银行卡信息的部分更新
type CardDetailsPatch struct {
	CardNumber *string `json:"cardNumber,omitempty"`
	ExpiryDate *string `json:"expiryDate,omitempty"`
	CVC        *string `json:"cvc,omitempty"`
	NameOnCard *string `json:"nameOnCard,omitempty"`
}

// BillingAddressPatch 账单地址的部分更新
type BillingAddressPatch struct {
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	ZipCode *string `json:"zipCode,omitempty"`
}

// PaymentData 付款表单状态
type PaymentData struct {
	PaymentMethod  string         `json:"paymentMethod"`
	CardDetails    CardDetails    `json:"cardDetails"`
	BillingAddress BillingAddress `json:"billingAddress"`
	TotalAmount    float64        `json:"totalAmount"`
}

// PaymentDataPatch 付款表单的部分更新，nil 字段保持不变
// 浅合并：CardDetails/BillingAddress 整体替换
type PaymentDataPatch struct {
	PaymentMethod  *string         `json:"paymentMethod,omitempty"`
	CardDetails    *CardDetails    `json:"cardDetails,omitempty"`
	BillingAddress *BillingAddress `json:"billingAddress,omitempty"`
	TotalAmount    *float64        `json:"totalAmount,omitempty"`
}
