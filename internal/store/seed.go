package store

import "or-schedule-backend/internal/model"

// Default reference data for a fresh deployment: four rooms, a small surgeon
// roster, and one example day of cases. Initialize only applies these when
// the corresponding table is empty.

// DefaultRooms returns the canonical room list.
func DefaultRooms() []model.Room {
	return []model.Room{
		{ID: "or-1", Name: "OR 1 (Gen)"},
		{ID: "or-2", Name: "OR 2 (Gen)"},
		{ID: "or-3", Name: "OR 3 (Ortho)"},
		{ID: "or-4", Name: "OR 4 (Cardiac)"},
	}
}

// DefaultSurgeons returns the surgeon roster.
func DefaultSurgeons() []model.Surgeon {
	return []model.Surgeon{
		{ID: "s-1", Name: "Dr. Chen"},
		{ID: "s-2", Name: "Dr. Okafor"},
		{ID: "s-3", Name: "Dr. Ramirez"},
		{ID: "s-4", Name: "Dr. Park"},
	}
}

// DefaultCases returns an example day's schedule.
func DefaultCases() []model.Case {
	return []model.Case{
		{
			ID: "case-0001", PatientID: "P001", Procedure: "Laparoscopic Cholecystectomy",
			Surgeon: "Dr. Chen", Room: "OR 1 (Gen)", StartTime: "07:30",
			SurgeonEstimateMinutes: 60, AIP50Minutes: 65, AIP90Minutes: 85, TurnoverMinutes: 25,
			Priority: model.PriorityElective, Risk: model.RiskLow, Conflicts: []string{},
		},
		{
			ID: "case-0002", PatientID: "P002", Procedure: "Open Appendectomy",
			Surgeon: "Dr. Okafor", Room: "OR 1 (Gen)", StartTime: "10:15",
			SurgeonEstimateMinutes: 45, AIP50Minutes: 50, AIP90Minutes: 70, TurnoverMinutes: 25,
			Priority: model.PriorityEmergent, Risk: model.RiskMedium, Conflicts: []string{"PACU beds near capacity mid-morning"},
		},
		{
			ID: "case-0003", PatientID: "P003", Procedure: "Total Knee Arthroplasty",
			Surgeon: "Dr. Ramirez", Room: "OR 3 (Ortho)", StartTime: "08:00",
			SurgeonEstimateMinutes: 90, AIP50Minutes: 95, AIP90Minutes: 120, TurnoverMinutes: 40,
			Priority: model.PriorityElective, Risk: model.RiskMedium, Conflicts: []string{"Requires specialized equipment tray"},
		},
		{
			ID: "case-0004", PatientID: "P004", Procedure: "CABG x3",
			Surgeon: "Dr. Park", Room: "OR 4 (Cardiac)", StartTime: "07:45",
			SurgeonEstimateMinutes: 240, AIP50Minutes: 250, AIP90Minutes: 310, TurnoverMinutes: 45,
			Priority: model.PriorityUrgent, Risk: model.RiskHigh, Conflicts: []string{"Perfusionist shared with OR 2"},
		},
	}
}
