package knowledge

import "time"

// FAQEntry is a learned question/answer pair. The fingerprint is the
// normalized token set of the canonical question text.
type FAQEntry struct {
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	Fingerprint []string  `json:"fingerprint"`
	Answer      string    `json:"answer"`
	UseCount    int       `json:"use_count"`
	CreatedAt   time.Time `json:"created_at"`
	LastUsed    time.Time `json:"last_used"`
}
