package domain

import "time"

// Patient sex values accepted by the API.
const (
	SexMale   = "M"
	SexFemale = "F"
	SexOther  = "O"
)

// ValidSexes returns the accepted sex values.
func ValidSexes() []string {
	return []string{SexMale, SexFemale, SexOther}
}

// IsValidSex reports whether s is an accepted sex value.
func IsValidSex(s string) bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// Patient represents a patient record.
type Patient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Sex       string    `json:"sex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PatientMedic links a patient to a treating medic.
type PatientMedic struct {
	ID                    int64     `json:"id"`
	MedicID               int64     `json:"medic_id"`
	PatientID             int64     `json:"patient_id"`
	DateFirstConsultation time.Time `json:"date_first_consultation"`
	CreatedAt             time.Time `json:"created_at"`
}
