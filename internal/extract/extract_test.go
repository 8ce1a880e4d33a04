package extract

import (
	"strings"
	"testing"
)

func TestTextStripsChrome(t *testing.T) {
	page := `<html><head><title>Terms</title><style>p{color:red}</style></head>
<body>
<nav><a href="/">Home</a></nav>
<script>track("pageview")</script>
<h1>Terms of Service</h1>
<p>You must be 18 or older.</p>
<footer>Copyright widgets</footer>
</body></html>`

	got := Text([]byte(page))
	if !strings.Contains(got, "Terms of Service") || !strings.Contains(got, "You must be 18 or older.") {
		t.Errorf("Expected body text preserved, got %q", got)
	}
	for _, gone := range []string{"color:red", `track("pageview")`, "Home", "Copyright widgets"} {
		if strings.Contains(got, gone) {
			t.Errorf("Expected %q to be stripped, got %q", gone, got)
		}
	}
}

func TestTextPlainContent(t *testing.T) {
	got := Text([]byte("Just a plain policy statement.\n"))
	if got != "Just a plain policy statement." {
		t.Errorf("Expected plain text passthrough, got %q", got)
	}
}
