package models

import "time"

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

type Employee struct {
	ID               string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID           string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	CompanyID        string         `gorm:"type:varchar(36);uniqueIndex:idx_company_employee_id;not null" json:"company_id"`
	EmployeeID       string         `gorm:"uniqueIndex:idx_company_employee_id;not null" json:"employee_id"`
	Department       string         `json:"department"`
	Designation      string         `json:"designation"`
	DateOfJoining    string         `gorm:"type:varchar(10)" json:"date_of_joining"`
	DateOfBirth      string         `gorm:"type:varchar(10)" json:"date_of_birth"`
	Phone            string         `json:"phone"`
	EmergencyContact string         `json:"emergency_contact"`
	Status           EmployeeStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
}
