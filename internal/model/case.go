package model

import "time"

// Priority is the scheduling urgency of a case.
type Priority string

const (
	PriorityElective Priority = "Elective"
	PriorityUrgent   Priority = "Urgent"
	PriorityEmergent Priority = "Emergent"
)

// Risk is the predicted clinical risk level of a case.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Case represents one scheduled surgical procedure. The room and surgeon
// fields hold display names, not foreign keys; room labels are matched
// against the canonical room list by the resolver.
type Case struct {
	ID                     string   `gorm:"primaryKey;size:64" json:"id"`
	PatientID              string   `gorm:"size:32;not null" json:"patientId"`
	Procedure              string   `gorm:"size:256;not null" json:"procedure"`
	Surgeon                string   `gorm:"size:128;not null" json:"surgeon"`
	Room                   string   `gorm:"size:128;not null" json:"room"`
	StartTime              string   `gorm:"size:5;not null;index" json:"startTime"` // "HH:mm"
	SurgeonEstimateMinutes int      `gorm:"not null" json:"surgeonEstimateMinutes"`
	AIP50Minutes           int      `gorm:"column:ai_p50_minutes;not null" json:"aiP50Minutes"`
	AIP90Minutes           int      `gorm:"column:ai_p90_minutes;not null" json:"aiP90Minutes"`
	TurnoverMinutes        int      `gorm:"not null" json:"turnoverMinutes"`
	Priority               Priority `gorm:"size:16;not null" json:"priority"`
	Risk                   Risk     `gorm:"size:16;not null" json:"risk"`
	Conflicts              []string `gorm:"serializer:json" json:"conflicts"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
