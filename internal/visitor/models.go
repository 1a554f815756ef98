package visitor

import "time"

// Status of a visitor record. IN is the only initial state; OUT is terminal
// and nothing transitions a record back.
type Status string

const (
	StatusIn  Status = "IN"
	StatusOut Status = "OUT"
)

// Type classifies who is visiting.
type Type string

const (
	TypeVisitor    Type = "visitor"
	TypeCasual     Type = "casual"
	TypeOrganizer  Type = "organizer"
	TypeContractor Type = "contractor"
)

// ValidType reports whether t is one of the known visitor types.
func ValidType(t Type) bool {
	switch t {
	case TypeVisitor, TypeCasual, TypeOrganizer, TypeContractor:
		return true
	}
	return false
}

// ConsentType records how the visitor gave consent.
type ConsentType string

const (
	ConsentSignature ConsentType = "signature"
	ConsentCheckbox  ConsentType = "checkbox"
)

// Actor identities recorded for the unauthenticated kiosk paths.
const (
	SelfCheckInActor  = "self-check-in"
	SelfCheckOutActor = "self-checkout"
)

// Record is a single visitor's check-in session. RecordID is the externally
// visible identifier; ID is the store's internal key.
type Record struct {
	ID               int64       `json:"id"`
	RecordID         string      `json:"recordId"`
	FullName         string      `json:"fullName"`
	VisitorType      Type        `json:"type"`
	IDNumber         string      `json:"idNumber,omitempty"`
	Phone            string      `json:"phone,omitempty"`
	Company          string      `json:"company,omitempty"`
	Photo            string      `json:"photo,omitempty"`
	VisitorCardPhoto string      `json:"visitorCardPhoto,omitempty"`
	IDCardPhoto      string      `json:"idCardPhoto,omitempty"`
	Purpose          string      `json:"purpose,omitempty"`
	AccessArea       string      `json:"accessArea,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	VehiclePlate     string      `json:"vehiclePlate,omitempty"`
	CheckInTime      time.Time   `json:"checkInTime"`
	CheckOutTime     *time.Time  `json:"checkOutTime,omitempty"`
	Status           Status      `json:"status"`
	RecordedBy       string      `json:"recordedBy"`
	ConsentType      ConsentType `json:"consentType,omitempty"`
	ConsentTime      *time.Time  `json:"consentTime,omitempty"`
	ConsentSignature string      `json:"consentSignature,omitempty"`
	QRCode           string      `json:"qrCode,omitempty"`
	QRExpiry         *time.Time  `json:"qrExpiry,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// Patch carries a partial update. recordId, checkInTime and status are not
// representable here: those fields are immutable through the update path.
type Patch struct {
	FullName         *string `json:"fullName,omitempty"`
	VisitorType      *Type   `json:"type,omitempty"`
	IDNumber         *string `json:"idNumber,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Company          *string `json:"company,omitempty"`
	Photo            *string `json:"photo,omitempty"`
	VisitorCardPhoto *string `json:"visitorCardPhoto,omitempty"`
	IDCardPhoto      *string `json:"idCardPhoto,omitempty"`
	Purpose          *string `json:"purpose,omitempty"`
	AccessArea       *string `json:"accessArea,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	VehiclePlate     *string `json:"vehiclePlate,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.FullName == nil && p.VisitorType == nil && p.IDNumber == nil &&
		p.Phone == nil && p.Company == nil && p.Photo == nil &&
		p.VisitorCardPhoto == nil && p.IDCardPhoto == nil && p.Purpose == nil &&
		p.AccessArea == nil && p.Notes == nil && p.VehiclePlate == nil
}

// Apply merges the patch into a record.
func (p Patch) Apply(r *Record) {
	if p.FullName != nil {
		r.FullName = *p.FullName
	}
	if p.VisitorType != nil {
		r.VisitorType = *p.VisitorType
	}
	if p.IDNumber != nil {
		r.IDNumber = *p.IDNumber
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.Company != nil {
		r.Company = *p.Company
	}
	if p.Photo != nil {
		r.Photo = *p.Photo
	}
	if p.VisitorCardPhoto != nil {
		r.VisitorCardPhoto = *p.VisitorCardPhoto
	}
	if p.IDCardPhoto != nil {
		r.IDCardPhoto = *p.IDCardPhoto
	}
	if p.Purpose != nil {
		r.Purpose = *p.Purpose
	}
	if p.AccessArea != nil {
		r.AccessArea = *p.AccessArea
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.VehiclePlate != nil {
		r.VehiclePlate = *p.VehiclePlate
	}
}

// DailyStats summarizes a calendar day. Pending counts status=IN across all
// time, not just the day in question.
type DailyStats struct {
	TodayIn  int `json:"todayIn"`
	TodayOut int `json:"todayOut"`
	Pending  int `json:"pending"`
}
