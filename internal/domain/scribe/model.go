package scribe

import (
	"time"
)

// DefaultPatientID is stored when a generate request carries no patient id.
const DefaultPatientID = "Demo Patient"

// Confidence is reported with every generated note.
const Confidence = 98

// NoteRecord is a single entry of the append-only history log.
type NoteRecord struct {
	ID         string    `json:"_id"`
	PatientID  string    `json:"patientId"`
	Transcript string    `json:"transcript"`
	SOAPNote   string    `json:"soapNote"`
	Timestamp  time.Time `json:"timestamp"`
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Transcript string `json:"transcript"`
	PatientID  string `json:"patientId,omitempty"`
}

// GenerateResponse is returned on a successful generation.
type GenerateResponse struct {
	SOAPNote   string `json:"soapNote"`
	Confidence int    `json:"confidence"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DemoSOAPNote is returned in demo mode regardless of the transcript.
const DemoSOAPNote = `
**S (Subjective):**
Patient is a 45-year-old male reporting a 3-day history of a sore throat, nasal congestion, and a mild, non-productive cough. He denies fever, chills, or body aches. Reports feeling fatigued. No known sick contacts.

**O (Objective):**
Vital Signs: Temp 98.9°F, BP 130/85, HR 80, RR 16, O2 Sat 99% on room air.
Physical Exam: Pharynx is erythematous with no exudates. Nasal mucosa is swollen and congested. Lungs are clear to auscultation bilaterally. Heart has a regular rate and rhythm.

**A (Assessment):**
1. Viral Upper Respiratory Infection (URI)
2. Allergic rhinitis

**P (Plan):**
1. Recommend supportive care: increased fluid intake, rest, and over-the-counter saline nasal spray.
2. Advised to take ibuprofen or acetaminophen for throat pain as needed.
3. Re-evaluate in 5-7 days if symptoms do not improve or worsen.
4. Patient educated on viral nature of illness and encouraged to monitor for signs of secondary bacterial infection.
`
