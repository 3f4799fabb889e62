package models

import "time"

type ServiceType string

const (
	ServiceVideoConsultation ServiceType = "video_consultation"
	ServiceElderCare         ServiceType = "elder_care"
	ServiceGym               ServiceType = "gym"
	ServiceMentalHealth      ServiceType = "mental_health"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceVideoConsultation, ServiceElderCare, ServiceGym, ServiceMentalHealth:
		return true
	}
	return false
}

type WellnessPartner struct {
	ID           string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string      `gorm:"not null" json:"name"`
	ServiceType  ServiceType `gorm:"type:varchar(32);not null" json:"service_type"`
	Description  string      `json:"description"`
	ContactEmail string      `json:"contact_email"`
	ContactPhone string      `json:"contact_phone"`
	Availability string      `json:"availability"`
	Pricing      string      `json:"pricing"`
	CreatedAt    time.Time   `json:"created_at"`
}

type BookingStatus string

const (
	BookingScheduled BookingStatus = "scheduled"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EmployeeID  string        `gorm:"type:varchar(36);index;not null" json:"employee_id"`
	PartnerID   string        `gorm:"type:varchar(36);index;not null" json:"partner_id"`
	ServiceType ServiceType   `gorm:"type:varchar(32);not null" json:"service_type"`
	BookingDate string        `gorm:"type:varchar(10)" json:"booking_date"`
	BookingTime string        `gorm:"type:varchar(8)" json:"booking_time"`
	Notes       *string       `json:"notes"`
	Status      BookingStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}
