package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxPremiumPayment TransactionType = "premium_payment"
	TxClaimPayout    TransactionType = "claim_payout"
)

func (t TransactionType) Valid() bool {
	return t == TxPremiumPayment || t == TxClaimPayout
}

// FinancialTransaction is an append-only ledger row.
type FinancialTransaction struct {
	ID              string          `gorm:"primaryKey;type:varchar(26)" json:"id"`
	CompanyID       string          `gorm:"type:varchar(36);index;not null" json:"company_id"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null" json:"transaction_type"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description     string          `json:"description"`
	ReferenceID     *string         `json:"reference_id"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transaction_date"`
}

// DashboardStats is derived on demand and never stored.
type DashboardStats struct {
	EmployeeCount       int             `json:"employee_count"`
	TotalClaims         int             `json:"total_claims"`
	PendingClaims       int             `json:"pending_claims"`
	ApprovedClaims      int             `json:"approved_claims"`
	RejectedClaims      int             `json:"rejected_claims"`
	TotalClaimAmount    decimal.Decimal `json:"total_claim_amount"`
	ApprovedClaimAmount decimal.Decimal `json:"approved_claim_amount"`
	TotalPremiums       decimal.Decimal `json:"total_premiums"`
	TotalPayouts        decimal.Decimal `json:"total_payouts"`
	NetBalance          decimal.Decimal `json:"net_balance"`
}
