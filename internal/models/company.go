// internal/models/company.go
package models

import "time"

type PlanType string

const (
	PlanBasic      PlanType = "basic"
	PlanPremium    PlanType = "premium"
	PlanEnterprise PlanType = "enterprise"
)

func (p PlanType) Valid() bool {
	return p == PlanBasic || p == PlanPremium || p == PlanEnterprise
}

type Company struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Industry      string    `json:"industry"`
	EmployeeCount int       `json:"employee_count"`
	ContactEmail  string    `json:"contact_email"`
	ContactPhone  string    `json:"contact_phone"`
	Address       string    `json:"address"`
	PlanType      PlanType  `gorm:"type:varchar(20);not null" json:"plan_type"`
	CreatedAt     time.Time `json:"created_at"`
}
