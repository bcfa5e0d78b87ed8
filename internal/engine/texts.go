package engine

// User-facing conversation texts.
const (
	textGreeting = "Hello, this is Onboarding Bot and I gonna help a little with submitting necessary documents " +
		"to make your onboarding smooth and pleasant."
	textUploadError   = "Sorry, we got some error during upload the file, could your please repeat once again?"
	textUploadSuccess = "Document was successfully uploaded, thank you!"
	textAllReceived   = "Thank you for submitting all necessary document! Our HR will connect with you soon."
	textAreYouDone    = "Thank you once again for submitting documents! Do you have any of the remaining ones?"

	// Literal reply-keyboard answers matched by the finish handler.
	answerYes = "Yes, I have some other too."
	answerNo  = "No, it was it, I don't have anything else"
)
