package service

// maxNotificationBodyRunes caps the preview text in a push notification.
const maxNotificationBodyRunes = 100

// ComposeMessageNotification builds the push title and body for a new chat
// message. A product context reframes the notification as a product inquiry;
// otherwise the title names the sender, falling back to a generic label when
// the sender record carries no name.
func ComposeMessageNotification(senderName, content, productTitle string) (title, body string) {
	body = TruncateBody(content)

	if productTitle != "" {
		title = "New inquiry about " + productTitle
		if senderName != "" {
			body = senderName + ": " + body
		}
		return title, body
	}

	if senderName != "" {
		title = "New message from " + senderName
	} else {
		title = "New message"
	}
	return title, body
}

// TruncateBody shortens content to the notification preview length, appending
// an ellipsis marker only when something was cut. Counts runes, not bytes.
func TruncateBody(content string) string {
	runes := []rune(content)
	if len(runes) <= maxNotificationBodyRunes {
		return content
	}
	return string(runes[:maxNotificationBodyRunes]) + "..."
}
