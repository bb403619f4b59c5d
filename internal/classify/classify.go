// Package classify produces sentiment, priority and a suggested reply for
// an email message. The primary path is a single OpenAI chat completion;
// any provider failure resolves to a deterministic keyword-based fallback,
// so classification always succeeds.
package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"mailtriage/internal/models"
)

// Result is the outcome of classifying a message
type Result struct {
	Sentiment      string
	Priority       string
	SuggestedReply string
}

// Urgency keywords map presence to urgent priority in the fallback path
var urgentKeywords = []string{
	"urgent", "critical", "immediate", "emergency", "asap",
	"cannot access", "down", "blocked", "failed", "error",
}

var positiveKeywords = []string{
	"good", "great", "excellent", "happy", "satisfied", "love", "amazing",
}

var negativeKeywords = []string{
	"bad", "terrible", "frustrated", "angry", "disappointed",
	"problem", "issue", "cannot", "unable",
}

const systemPrompt = `You are a customer support triage assistant. Analyze the email below and respond in exactly this format:

Sentiment: <positive|negative|neutral>
Priority: <urgent|normal>
Reply:
<a professional, empathetic reply addressing the customer's concern; if the priority is urgent, emphasize immediate action>

Do not output anything else.`

// Classifier classifies messages, preferring the language model when a
// credential is configured
type Classifier struct {
	client  *openai.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates a classifier. An empty API key disables the model path and
// every classification uses the keyword fallback.
func New(apiKey string, timeoutSeconds int, logger zerolog.Logger) *Classifier {
	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &Classifier{
		client:  client,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		logger:  logger,
	}
}

// Classify returns a classification for the given subject and body.
// It never returns an error: the model path is attempted first and the
// keyword fallback substitutes on any failure.
func (c *Classifier) Classify(ctx context.Context, subject, body string) Result {
	if c.client != nil {
		if result, ok := c.tryModel(ctx, subject, body); ok {
			return result
		}
	}
	return c.fallback(subject, body)
}

// tryModel runs the chat completion and parses its labeled-line output.
// The boolean reports whether a usable result was produced.
func (c *Classifier) tryModel(ctx context.Context, subject, body string) (Result, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Subject: %s\n\n%s", subject, body)},
		},
		MaxTokens:   400,
		Temperature: 0.2,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("Model classification failed, using keyword fallback")
		return Result{}, false
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn().Msg("Model returned no choices, using keyword fallback")
		return Result{}, false
	}

	result, err := parseModelOutput(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Unparseable model output, using keyword fallback")
		return Result{}, false
	}
	return result, true
}

// parseModelOutput parses the documented labeled-line format. Any missing
// or invalid field rejects the whole output; there is no partial salvage.
func parseModelOutput(output string) (Result, error) {
	var result Result
	lines := strings.Split(output, "\n")

	replyStart := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "sentiment:"):
			result.Sentiment = strings.ToLower(strings.TrimSpace(trimmed[len("sentiment:"):]))
		case strings.HasPrefix(lower, "priority:"):
			result.Priority = strings.ToLower(strings.TrimSpace(trimmed[len("priority:"):]))
		case strings.HasPrefix(lower, "reply:"):
			replyStart = i
		}
		if replyStart >= 0 {
			break
		}
	}

	if !models.ValidSentiment(result.Sentiment) {
		return Result{}, fmt.Errorf("invalid sentiment %q in model output", result.Sentiment)
	}
	if !models.ValidPriority(result.Priority) {
		return Result{}, fmt.Errorf("invalid priority %q in model output", result.Priority)
	}
	if replyStart < 0 {
		return Result{}, fmt.Errorf("missing reply in model output")
	}

	reply := strings.TrimSpace(strings.TrimSpace(lines[replyStart])[len("reply:"):])
	rest := strings.TrimSpace(strings.Join(lines[replyStart+1:], "\n"))
	if reply == "" {
		reply = rest
	} else if rest != "" {
		reply += "\n" + rest
	}
	if reply == "" {
		return Result{}, fmt.Errorf("empty reply in model output")
	}

	result.SuggestedReply = reply
	return result, nil
}

// fallback classifies by keyword presence. It is a pure function of the
// inputs apart from the case number embedded in the reply template.
func (c *Classifier) fallback(subject, body string) Result {
	text := strings.ToLower(subject + " " + body)

	priority := models.PriorityNormal
	for _, keyword := range urgentKeywords {
		if strings.Contains(text, keyword) {
			priority = models.PriorityUrgent
			break
		}
	}

	positive := 0
	for _, word := range positiveKeywords {
		if strings.Contains(text, word) {
			positive++
		}
	}
	negative := 0
	for _, word := range negativeKeywords {
		if strings.Contains(text, word) {
			negative++
		}
	}

	sentiment := models.SentimentNeutral
	if negative > positive {
		sentiment = models.SentimentNegative
	} else if positive > negative {
		sentiment = models.SentimentPositive
	}

	return Result{
		Sentiment:      sentiment,
		Priority:       priority,
		SuggestedReply: fallbackReply(sentiment, priority),
	}
}

// fallbackReply renders the templated acknowledgement used when no model
// reply is available
func fallbackReply(sentiment, priority string) string {
	caseNumber := "CS" + time.Now().Format("20060102150405")

	if priority == models.PriorityUrgent && sentiment == models.SentimentNegative {
		return fmt.Sprintf(`Thank you for reaching out, and I sincerely apologize for the inconvenience you're experiencing.

I've escalated your case as urgent and our priority support team is now handling your request. You can expect an update within the next 2 hours with a resolution or detailed action plan.

Case Number: %s

Best regards,
Support Team`, caseNumber)
	}

	timeline := "24 hours"
	urgentNote := ""
	if priority == models.PriorityUrgent {
		timeline = "2 hours"
		urgentNote = "Given the urgent nature of your request, "
	}

	return fmt.Sprintf(`Thank you for contacting our support team. I've received your inquiry and our team is reviewing your request.

%sWe'll provide you with a comprehensive response within %s.

Case Number: %s

Best regards,
Support Team`, urgentNote, timeline, caseNumber)
}
