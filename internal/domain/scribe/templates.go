package scribe

// ConversationTemplate is a sample doctor-patient conversation that clients
// can load as a starting transcript.
type ConversationTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

var conversationTemplates = []ConversationTemplate{
	{
		ID:          "general-checkup",
		Name:        "General Checkup",
		Category:    "Primary Care",
		Description: "Routine annual physical examination",
		Content: `Doctor: Good morning! I'm Dr. Smith. How are you feeling today?
Patient: Good morning, Doctor. I'm here for my annual checkup. Overall, I feel pretty good.
Doctor: Excellent. Any specific concerns or symptoms you'd like to discuss?
Patient: Well, I've been feeling a bit more tired than usual lately, and I've noticed some occasional headaches.
Doctor: How long have you been experiencing the fatigue and headaches?
Patient: The tiredness started about 3 months ago, and the headaches maybe once or twice a week for the past month.
Doctor: Are you getting adequate sleep? Any changes in your sleep pattern?
Patient: I try to get 7-8 hours, but sometimes I have trouble falling asleep.
Doctor: Any stress at work or home that might be contributing?
Patient: Work has been busier than usual with a big project deadline.`,
	},
	{
		ID:          "respiratory-complaint",
		Name:        "Respiratory Issues",
		Category:    "Respiratory",
		Description: "Patient with cough and breathing difficulties",
		Content: `Doctor: What brings you in today?
Patient: I've had this persistent cough for about two weeks now, and it's getting worse.
Doctor: Can you describe the cough? Is it dry or are you bringing anything up?
Patient: It's mostly dry, but sometimes I cough up a little clear mucus. It's worse at night.
Doctor: Any fever, chills, or body aches?
Patient: No fever, but I've been feeling more tired than usual.
Doctor: Any shortness of breath or chest pain?
Patient: Yes, I get short of breath when I walk up stairs, which is unusual for me.
Doctor: Any recent travel or exposure to sick contacts?
Patient: My coworker was sick with something similar last week.
Doctor: Are you taking any medications or have any allergies?
Patient: No regular medications, and no known allergies.`,
	},
	{
		ID:          "abdominal-pain",
		Name:        "Abdominal Pain",
		Category:    "Gastroenterology",
		Description: "Patient presenting with stomach pain",
		Content: `Doctor: I understand you're having abdominal pain. Can you tell me about it?
Patient: Yes, I've had this stomach pain for the past three days. It's really bothering me.
Doctor: Where exactly is the pain located?
Patient: It's mainly in the upper part of my stomach, right here under my ribs.
Doctor: How would you describe the pain? Sharp, dull, cramping?
Patient: It's a burning sensation, especially after I eat.
Doctor: Does anything make it better or worse?
Patient: It gets worse when I eat spicy or acidic foods, and better when I take antacids.
Doctor: Any nausea, vomiting, or changes in bowel movements?
Patient: Some nausea, especially in the morning, but no vomiting. Bowel movements are normal.
Doctor: Any history of ulcers or stomach problems?
Patient: My father had ulcers, but I've never had stomach problems before.`,
	},
	{
		ID:          "mental-health",
		Name:        "Mental Health Check",
		Category:    "Psychiatry",
		Description: "Mental health screening and assessment",
		Content: `Doctor: Thank you for coming in today. How have you been feeling emotionally lately?
Patient: Honestly, not great. I've been feeling pretty down for the past few weeks.
Doctor: Can you tell me more about what you mean by feeling down?
Patient: I just don't have energy for things I used to enjoy. I feel sad most of the time.
Doctor: How long has this been going on?
Patient: About 6 weeks now. It started gradually but has gotten worse.
Doctor: Are you having trouble sleeping or eating?
Patient: I'm sleeping too much - like 10-12 hours but still feel tired. My appetite is poor.
Doctor: Any thoughts of hurting yourself or others?
Patient: No, nothing like that. I just feel hopeless sometimes.
Doctor: Have you experienced anything like this before?
Patient: My mom had depression, but this is new for me.
Doctor: Any major life changes or stressful events recently?
Patient: I lost my job about two months ago, and my relationship ended around the same time.`,
	},
}

// Templates returns the built-in conversation templates, optionally limited
// to one category. The returned slice is a copy.
func Templates(category string) []ConversationTemplate {
	out := make([]ConversationTemplate, 0, len(conversationTemplates))
	for _, t := range conversationTemplates {
		if category == "" || t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// TemplateCategories lists the distinct categories in catalogue order.
func TemplateCategories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range conversationTemplates {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}
