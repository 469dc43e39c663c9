package models

import "time"

// Sample is the canonical sample record. The engine references it but does
// not own it: intake, reporting, and prosecution tracking live elsewhere.
// The three date fields and LabResult pre-date the node model; the position
// resolver still consults them so records collected before the graph existed
// stay interpretable, and the synchronizer mirrors decision data back onto
// them.
type Sample struct {
	ID            string     `json:"id"`
	LiftedDate    *time.Time `json:"lifted_date,omitempty"`
	DispatchDate  *time.Time `json:"dispatch_date,omitempty"`
	LabReportDate *time.Time `json:"lab_report_date,omitempty"`
	LabResult     string     `json:"lab_result,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
