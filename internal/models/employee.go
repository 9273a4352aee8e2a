package models

import (
	"time"

	"github.com/hongminglow/erp-api/internal/date"
)

// EmployeeStatus is derived from an employee's contract or visa expiry.
type EmployeeStatus string

const (
	StatusActive       EmployeeStatus = "Active"
	StatusExpiringSoon EmployeeStatus = "Expiring Soon"
	StatusExpired      EmployeeStatus = "Expired"
)

// ExpiringWindowDays is the inclusive horizon for StatusExpiringSoon.
const ExpiringWindowDays = 30

// Employee is a staff record with a contract expiry date.
type Employee struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Position   string         `json:"position"`
	Department string         `json:"department,omitempty"`
	ExpiryDate date.Date      `json:"expiry_date"`
	Status     EmployeeStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
}

// EmployeeStatusOn classifies an expiry date relative to today.
func EmployeeStatusOn(expiry, today date.Date) EmployeeStatus {
	days := today.DaysUntil(expiry)
	switch {
	case days < 0:
		return StatusExpired
	case days <= ExpiringWindowDays:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// WithStatus returns a copy of e with Status derived for today.
func (e Employee) WithStatus(today date.Date) Employee {
	e.Status = EmployeeStatusOn(e.ExpiryDate, today)
	return e
}
