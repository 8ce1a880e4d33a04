package relevance

import "strings"

// Fixed vocabulary of AI/ML/policy terms. Multi-word terms are preferred so
// that substring matching does not trip on words that merely contain "ai".
var vocabulary = []string{
	"artificial intelligence",
	"machine learning",
	"automated decision",
	"algorithmic",
	"generative ai",
	"ai model",
	"ai system",
	"ai policy",
	"ai safety",
	"ai governance",
	"ai ethics",
	"large language model",
	"foundation model",
	"deep learning",
	"neural network",
	"facial recognition",
	"biometric",
	"chatbot",
	"training data",
	"copyright",
	"intellectual property",
}

// IsRelevant reports whether text mentions any tracked AI or policy term,
// case-insensitively. It is a cheap pre-filter; the summarizer's own output
// gets the same check before a change is reported.
func IsRelevant(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range vocabulary {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
