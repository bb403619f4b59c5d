package classify

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
)

// requestTypeRules map keyword hits to a request-type bucket; first match wins
var requestTypeRules = []struct {
	keywords []string
	label    string
}{
	{[]string{"billing", "payment"}, "Billing Issue"},
	{[]string{"login", "account"}, "Account Access"},
	{[]string{"integration", "api"}, "Technical Integration"},
	{[]string{"refund"}, "Refund Request"},
	{[]string{"pricing"}, "Pricing Inquiry"},
}

// ExtractKeyInfo pulls contact details and a request-type category out of
// the message text for display alongside the classification
func ExtractKeyInfo(subject, body string) []string {
	text := subject + " " + body
	var info []string

	if emails := emailPattern.FindAllString(text, -1); len(emails) > 0 {
		info = append(info, fmt.Sprintf("Contact: %s", strings.Join(emails, ", ")))
	}
	if phones := phonePattern.FindAllString(text, -1); len(phones) > 0 {
		info = append(info, fmt.Sprintf("Phone: %s", strings.Join(phones, ", ")))
	}

	lower := strings.ToLower(text)
	requestType := "General Support"
	for _, rule := range requestTypeRules {
		matched := false
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				matched = true
				break
			}
		}
		if matched {
			requestType = rule.label
			break
		}
	}
	info = append(info, "Request Type: "+requestType)

	return info
}
