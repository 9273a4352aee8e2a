package dto

type CreateEmployeeRequest struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	ExpiryDate string `json:"expiry_date"`
}
