package helper

var StatusMessages = map[string]string{
	"draft":   "Your payment has not been processed yet",
	"pending": "Your payment is being processed by ePayco",
	"done":    "Your payment has been processed",
	"cancel":  "Your payment has been cancelled",
	"error":   "An error occurred while processing your payment",
}

func GetStatusMessage(state string) string {
	if message, exists := StatusMessages[state]; exists {
		return message
	}
	return "Unknown payment state"
}
