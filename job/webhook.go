package job

// WebhookEvent filters which lifecycle moments trigger a webhook call.
type WebhookEvent string

const (
	WebhookStart     WebhookEvent = "start"
	WebhookOutput    WebhookEvent = "output"
	WebhookLogs      WebhookEvent = "logs"
	WebhookCompleted WebhookEvent = "completed"
)

// Webhook asks the service to call URL on the listed events. An empty
// Events list leaves filtering to the service default.
type Webhook struct {
	URL    string         `json:"url"`
	Events []WebhookEvent `json:"events,omitempty"`
}
