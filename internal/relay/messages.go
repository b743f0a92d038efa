package relay

// Fixed reply texts. These are composed in English and translated back to
// the user's language just before delivery.
const (
	// emergencyScript is sent verbatim for emergency-classified messages.
	// No AI service is consulted on that path.
	emergencyScript = "If this is a medical emergency, please call your local " +
		"emergency number immediately. I cannot provide emergency medical care."

	// apologyReply substitutes for the answer when the reasoning engine
	// fails outright.
	apologyReply = "I'm having trouble processing your request right now. " +
		"Please try again in a moment."

	// disclaimerFooter is appended to every non-emergency reply.
	disclaimerFooter = "\n\n⚠️ This is not medical advice. Please consult a " +
		"healthcare professional for medical concerns."
)
