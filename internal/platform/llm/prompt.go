package llm

import (
	"strings"
)

const soapPromptTemplate = `You are an expert medical scribe. Your task is to convert the following doctor-patient conversation into a structured SOAP note.

**Transcript:**
{{transcript}}

**Output the SOAP note in the following format:**

**S (Subjective):**
[Patient's subjective complaints and history]

**O (Objective):**
[Objective findings from the physical exam, vital signs, and lab results]

**A (Assessment):**
[Your assessment of the patient's condition]

**P (Plan):**
[The plan for the patient's treatment and follow-up]
`

// SOAPPrompt embeds transcript in the fixed SOAP note prompt.
func SOAPPrompt(transcript string) string {
	return strings.Replace(soapPromptTemplate, "{{transcript}}", transcript, 1)
}
