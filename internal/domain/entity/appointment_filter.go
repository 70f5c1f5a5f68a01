package entity

// AppointmentFilter is a domain-level filter for listing appointments.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	Status     AppointmentStatus // empty = any status
	DoctorName string            // ILIKE on the doctor's full name
	DateFrom   string            // Format: YYYY-MM-DD
	DateTo     string            // Format: YYYY-MM-DD
	Limit      int
	Offset     int
}

// MedicationFilter narrows medication listings
type MedicationFilter struct {
	Search     string // ILIKE on name or supplier
	ExpiryFrom string // Format: YYYY-MM-DD
	ExpiryTo   string // Format: YYYY-MM-DD
	Limit      int
	Offset     int
}

// PatientFilter narrows the patient administration listing
type PatientFilter struct {
	Search string // ILIKE on name, email or matric number
	Limit  int
	Offset int
}

// DailyCount is the number of rows created on one calendar day
type DailyCount struct {
	Day   string // Format: YYYY-MM-DD
	Count int64
}
