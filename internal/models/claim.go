package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ClaimType string

const (
	ClaimMedical  ClaimType = "medical"
	ClaimDental   ClaimType = "dental"
	ClaimVision   ClaimType = "vision"
	ClaimWellness ClaimType = "wellness"
)

func (t ClaimType) Valid() bool {
	switch t {
	case ClaimMedical, ClaimDental, ClaimVision, ClaimWellness:
		return true
	}
	return false
}

// ClaimStatus is the lifecycle state of a claim.
type ClaimStatus string

const (
	ClaimSubmitted   ClaimStatus = "submitted"    // initial
	ClaimUnderReview ClaimStatus = "under_review" // picked up by a reviewer
	ClaimApproved    ClaimStatus = "approved"     // terminal
	ClaimRejected    ClaimStatus = "rejected"     // terminal
)

var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimSubmitted:   {ClaimUnderReview, ClaimApproved, ClaimRejected},
	ClaimUnderReview: {ClaimApproved, ClaimRejected},
	ClaimApproved:    {},
	ClaimRejected:    {},
}

func (s ClaimStatus) Valid() bool {
	_, ok := claimTransitions[s]
	return ok
}

// CanTransitionTo reports whether a claim in status s may move to next.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	for _, allowed := range claimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimApproved || s == ClaimRejected
}

type Claim struct {
	ID             string                      `gorm:"primaryKey;type:varchar(26)" json:"id"`
	EmployeeID     string                      `gorm:"type:varchar(36);index;not null" json:"employee_id"`
	CompanyID      string                      `gorm:"type:varchar(36);index;not null" json:"company_id"`
	ClaimType      ClaimType                   `gorm:"type:varchar(20);not null" json:"claim_type"`
	Amount         decimal.Decimal             `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description    string                      `gorm:"not null" json:"description"`
	Status         ClaimStatus                 `gorm:"type:varchar(20);index;not null" json:"status"`
	Documents      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"documents"`
	SubmissionDate time.Time                   `gorm:"index;not null" json:"submission_date"`
	ReviewDate     *time.Time                  `json:"review_date"`
	ReviewerNotes  *string                     `json:"reviewer_notes"`
	ReviewedBy     *string                     `gorm:"type:varchar(36)" json:"reviewed_by"`
}
