package domain

import "time"

// NoteType categorizes SOAP notes (e.g. first consultation, follow-up).
type NoteType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Prompt      string    `json:"prompt,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SoapNote is a clinical note attached to a patient-medic relation.
// A signed note is immutable; any successful update marks it edited.
type SoapNote struct {
	ID             int64     `json:"id"`
	PatientMedicID int64     `json:"patient_medic_id"`
	NoteTypeID     int64     `json:"note_type_id"`
	Content        string    `json:"content"`
	DateCreated    time.Time `json:"date_created"`
	Edited         bool      `json:"edited"`
	Signed         bool      `json:"signed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// MedicID is the owning medic, resolved through the patient-medic
	// relation when the note is loaded.
	MedicID int64 `json:"-"`
}
