package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	_ "github.com/emersion/go-message/charset" // register extended charsets for MIME decoding
	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"

	"mailtriage/internal/config"
	"mailtriage/internal/models"
)

// Fetcher retrieves recent messages from the IMAP inbox
type Fetcher struct {
	addr     string
	username string
	password string
	daysBack int
	logger   zerolog.Logger
}

// NewFetcher creates a fetcher for the configured mailbox
func NewFetcher(cfg *config.Config, logger zerolog.Logger) *Fetcher {
	daysBack := cfg.FetchDaysBack
	if daysBack < 1 {
		daysBack = 1
	}
	return &Fetcher{
		addr:     cfg.IMAPServer + ":" + cfg.IMAPPort,
		username: cfg.EmailUser,
		password: cfg.EmailPass,
		daysBack: daysBack,
		logger:   logger,
	}
}

// FetchRecent opens an IMAP session and returns up to limit of the most
// recent inbox messages. The session is closed on every exit path.
func (f *Fetcher) FetchRecent(_ context.Context, limit int) ([]models.RawMessage, error) {
	if f.username == "" || f.password == "" {
		return nil, &AuthError{Op: "imap login", Err: errCredentialsMissing}
	}

	client, err := imapclient.DialTLS(f.addr, nil)
	if err != nil {
		return nil, &TransportError{Op: "imap dial " + f.addr, Err: err}
	}
	defer func() { _ = client.Logout().Wait() }()

	if err := client.Login(f.username, f.password).Wait(); err != nil {
		return nil, &AuthError{Op: "imap login", Err: err}
	}

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, &TransportError{Op: "imap select INBOX", Err: err}
	}

	since := time.Now().AddDate(0, 0, -f.daysBack)
	searchData, err := client.UIDSearch(&imap.SearchCriteria{Since: since}, nil).Wait()
	if err != nil {
		return nil, &TransportError{Op: "imap search", Err: err}
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// Most recent messages carry the highest UIDs
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	var messages []models.RawMessage
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			f.logger.Warn().Err(err).Msg("Skipping message with unreadable fetch data")
			continue
		}

		messages = append(messages, rawMessageFromBuffer(buf, bodySection))
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, &TransportError{Op: "imap fetch", Err: err}
	}

	return messages, nil
}

// rawMessageFromBuffer extracts the fields the pipeline needs from a
// fetched message
func rawMessageFromBuffer(buf *imapclient.FetchMessageBuffer, section *imap.FetchItemBodySection) models.RawMessage {
	raw := models.RawMessage{
		ID: fmt.Sprintf("uid-%d", buf.UID),
	}

	if buf.Envelope != nil {
		if buf.Envelope.MessageID != "" {
			raw.ID = buf.Envelope.MessageID
		}
		raw.Subject = buf.Envelope.Subject
		raw.SentDate = buf.Envelope.Date
		if len(buf.Envelope.From) > 0 {
			raw.Sender = buf.Envelope.From[0].Addr()
		}
	}

	if body := buf.FindBodySection(section); body != nil {
		raw.Body = extractBody(body)
	}

	return raw
}

// extractBody parses a raw RFC 822 message and returns its plain-text
// content, preferring the text/plain part and falling back to stripped
// HTML when no plain part exists
func extractBody(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// Not parseable as MIME; treat the payload as plain text
		return strings.TrimSpace(string(raw))
	}
	defer mr.Close()

	var textBody, htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		content, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && textBody == "":
			textBody = string(content)
		case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
			htmlBody = string(content)
		}
	}

	if textBody != "" {
		return strings.TrimSpace(textBody)
	}
	return stripHTML(htmlBody)
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes tags and decodes common entities, producing a basic
// plain-text rendering of an HTML body
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>"} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
