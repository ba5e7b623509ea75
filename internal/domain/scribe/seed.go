package scribe

import (
	"context"
	"fmt"
	"time"
)

// SampleNotes returns the two records inserted into an empty store, stamped
// relative to now.
func SampleNotes(now time.Time) []*NoteRecord {
	return []*NoteRecord{
		{
			PatientID:  "PID-001",
			Transcript: "Patient complains of a persistent headache for the last 48 hours, located in the frontal region. Describes the pain as a dull, constant ache. Rates pain at a 6/10. Denies any recent trauma.",
			SOAPNote:   "**S:** Patient is a 32-year-old female complaining of a persistent frontal headache for 48 hours, described as a dull, constant ache at 6/10 severity. Denies trauma.\n**O:** Vitals stable. Neurological exam is normal. No signs of photophobia or phonophobia.\n**A:** Tension headache.\n**P:** Recommended over-the-counter analgesics (ibuprofen 400mg). Advised to monitor symptoms and follow up if the headache worsens or is accompanied by other symptoms like fever or vision changes.",
			Timestamp:  now.Add(-24 * time.Hour),
		},
		{
			PatientID:  "PID-002",
			Transcript: "Follow-up visit for hypertension management. Patient reports good adherence to medication (Lisinopril 10mg). No side effects reported. Home blood pressure readings have been consistently around 135/85 mmHg.",
			SOAPNote:   "**S:** Follow-up for hypertension. Patient reports medication adherence and home BP readings of 135/85 mmHg.\n**O:** BP in-office is 138/88 mmHg. HR 72. No peripheral edema.\n**A:** Controlled hypertension.\n**P:** Continue current medication regimen. Encourage continued home BP monitoring. Follow up in 3 months. Discussed benefits of a low-sodium diet.",
			Timestamp:  now.Add(-4 * time.Hour),
		},
	}
}

// Seed inserts the sample notes when the store is empty and returns how many
// were inserted.
func Seed(ctx context.Context, repo HistoryRepository, now time.Time) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	notes := SampleNotes(now.UTC())
	if err := repo.AppendMany(ctx, notes); err != nil {
		return 0, fmt.Errorf("insert sample notes: %w", err)
	}
	return len(notes), nil
}
