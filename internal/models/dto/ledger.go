package dto

import "github.com/shopspring/decimal"

// PostEntryRequest is the body of a day-book post. Image is the URL returned by the upload endpoint.
type PostEntryRequest struct {
	Date        string          `json:"date"`
	VoucherNo   string          `json:"voucher_no"`
	Particulars string          `json:"particulars"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Image       string          `json:"image"`
}

// PostTransactionRequest is the body of a posting to one ledger account.
type PostTransactionRequest struct {
	Date        string          `json:"date"`
	VoucherNo   string          `json:"voucher_no"`
	Particulars string          `json:"particulars"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
}
