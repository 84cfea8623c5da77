package notifications

import "strings"

// Template is one email template. {{first_name}} and {{form_url}} are
// substituted at send time, in the subject and the body both.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DefaultPromptTemplate opens the week's check-in.
var DefaultPromptTemplate = Template{
	Subject: "{{first_name}}, time for your weekly check-in",
	Body: `Hi {{first_name}},

It's check-in time. Take a couple of minutes to share what you accomplished
this week, anything blocking you, and your priorities for next week:

{{form_url}}

Thanks!`,
}

// DefaultReminderTemplate nudges members who have not submitted yet.
var DefaultReminderTemplate = Template{
	Subject: "Reminder: your weekly check-in is still open",
	Body: `Hi {{first_name}},

Just a reminder that your check-in for this week hasn't come in yet. It only
takes a couple of minutes:

{{form_url}}

Thanks!`,
}

// DefaultChaseTemplate is the manual follow-up a manager triggers directly.
var DefaultChaseTemplate = Template{
	Subject: "Quick nudge about your weekly check-in",
	Body: `Hi {{first_name}},

Your manager asked for a quick nudge: your check-in for this week is still
missing. You can submit it here:

{{form_url}}

Thanks!`,
}

// Fill substitutes the placeholders and returns the rendered subject and
// body.
func (t Template) Fill(firstName, formURL string) (subject, body string) {
	r := strings.NewReplacer(
		"{{first_name}}", firstName,
		"{{form_url}}", formURL,
	)
	return r.Replace(t.Subject), r.Replace(t.Body)
}

// templateFor maps an email type to its default template.
func templateFor(emailType string) Template {
	switch emailType {
	case "reminder":
		return DefaultReminderTemplate
	case "chase", "bulk_chase":
		return DefaultChaseTemplate
	default:
		return DefaultPromptTemplate
	}
}
