package gemini

import "fmt"

// DigestPromptTemplate wraps the newline-joined message contents. It asks for
// a concise Hebrew summary that ends with a short closing paragraph.
const DigestPromptTemplate = "אנא סכם בעברית את ההודעות הבאות בצורה תמציתית:\n\n%s\n\nסיים את הסיכום בפסקה קצרה."

// DigestPrompt renders the digest prompt for the given joined contents.
func DigestPrompt(joined string) string {
	return fmt.Sprintf(DigestPromptTemplate, joined)
}
