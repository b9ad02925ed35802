package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/store"
)

const maxSubjectLen = 100

var (
	reMailMePrefix = regexp.MustCompile(`(?i)^\s*mail me\b[:,]?\s*`)
	reNeedsToBe    = regexp.MustCompile(`(?i)\b([\w][\w ]*?)\s+needs?\s+to\s+be\s+([\w]+)`)
	reWorkItem     = regexp.MustCompile(`(?i)\b(need|needs|require|requires|should|must)\b`)
	reEstimate     = regexp.MustCompile(`(?i)\b(time|cost|costs|price|day|days|hour|hours|eur|euros?|usd|dollars?)\b|[$€£]`)
	reSegmentSplit = regexp.MustCompile(`[,;.\n]+`)
)

// mailBody groups the segmented content of a mail-me message.
type mailBody struct {
	workItems []string
	estimates []string
	other     []string
}

// handleMailMe turns a "mail me ..." message into a structured email to the
// sender's own address.
func (r *Router) handleMailMe(ctx context.Context, msg bus.IncomingMessage, user store.User) Result {
	if r.mailer == nil {
		return Failure(fmt.Errorf("mail me: email provider not configured"))
	}
	if user.Email == "" {
		return Failure(fmt.Errorf("mail me: user %s has no email address", user.ID))
	}

	content := reMailMePrefix.ReplaceAllString(msg.Text, "")
	if strings.TrimSpace(content) == "" {
		return Clarification("What should I put in the email?")
	}

	subject := synthesizeSubject(content)
	body := segmentContent(content)

	if err := r.mailer.SendEmail(ctx, user.Email, subject, body.render()); err != nil {
		return Failure(fmt.Errorf("mail me: send to %s: %w", user.Email, err))
	}

	slog.Info("mail-me email sent", "to", user.Email, "subject", subject)
	return Success(fmt.Sprintf("Done — I've emailed you %q.", subject)).
		WithPayload(map[string]string{"subject": subject})
}

// synthesizeSubject derives a subject line: the first "X need(s) to be Y"
// phrase, or the first sentence truncated to 100 characters.
func synthesizeSubject(content string) string {
	if m := reNeedsToBe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[0])
	}

	sentence := content
	if idx := strings.IndexAny(content, ".\n"); idx > 0 {
		sentence = content[:idx]
	}
	return truncate(strings.TrimSpace(sentence), maxSubjectLen)
}

// segmentContent splits the content into work items (need/require/should/
// must), estimates (time/cost/price/duration/currency tokens), and everything
// else. Work-item vocabulary wins when a segment matches both.
func segmentContent(content string) mailBody {
	var body mailBody
	for _, seg := range reSegmentSplit.Split(content, -1) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		switch {
		case reWorkItem.MatchString(seg):
			body.workItems = append(body.workItems, seg)
		case reEstimate.MatchString(seg):
			body.estimates = append(body.estimates, seg)
		default:
			body.other = append(body.other, seg)
		}
	}
	return body
}

func (b mailBody) render() string {
	var sb strings.Builder
	writeSection := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(title + ":\n")
		for _, l := range lines {
			sb.WriteString("- " + l + "\n")
		}
	}
	writeSection("Work Items", b.workItems)
	writeSection("Estimates", b.estimates)
	writeSection("Other", b.other)
	return sb.String()
}
