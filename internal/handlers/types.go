package handlers

import "encoding/json"

// CreatePaymentOptionsRequest accepts numbers or numeric strings for amounts
type CreatePaymentOptionsRequest struct {
	UserID        string      `json:"userId"`
	Email         string      `json:"email"`
	PackageType   string      `json:"packageType"`
	PackagePrice  json.Number `json:"packagePrice"`
	DepositAmount json.Number `json:"depositAmount"`
}

type PaymentLinks struct {
	Deposit string `json:"deposit"`
	Full    string `json:"full"`
}

type CreatePaymentOptionsResponse struct {
	Links PaymentLinks `json:"links"`
}

type PaymentStatusResponse struct {
	Status string `json:"status"`
}

type InteractionRequest struct {
	UserID string                 `json:"userId"`
	Type   string                 `json:"type"`
	Data   map[string]interface{} `json:"data"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
