package notify

import (
	"fmt"
	"strings"

	"github.com/angleinstitute/backend/internal/model"
)

const (
	SubjectContact   = "New Contact Form Submission - Angle Institute"
	SubjectFranchise = "New Franchise Inquiry - Angle Institute"
	SubjectEnquiry   = "New Enquiry - Angle Institute"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// escapeHTML escapes the five HTML-significant characters.
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// multiline escapes s and turns newlines into <br>.
func multiline(s string) string {
	return strings.ReplaceAll(escapeHTML(s), "\n", "<br>")
}

const (
	htmlOpen  = `<div style="font-family: Arial, sans-serif; max-width: 600px;">`
	htmlClose = `</div>`
	footerFmt = `<hr>
  <p style="color: #666; font-size: 12px;">This email was sent from the Angle Institute %s.</p>`
)

func field(label, value string) string {
	return fmt.Sprintf("  <p><strong>%s:</strong> %s</p>\n", label, escapeHTML(value))
}

// FormatContact renders a contact submission.
func FormatContact(s *model.Submission) Message {
	text := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nMessage: %s",
		s.Name, s.Email, s.Phone, s.Message)

	var b strings.Builder
	b.WriteString(htmlOpen + "\n  <h2>New Contact Form Submission</h2>\n")
	b.WriteString(field("Name", s.Name))
	b.WriteString(field("Email", s.Email))
	b.WriteString(field("Phone", s.Phone))
	b.WriteString("  <p><strong>Message:</strong></p>\n")
	fmt.Fprintf(&b, "  <p>%s</p>\n  ", multiline(s.Message))
	fmt.Fprintf(&b, footerFmt, "website contact form")
	b.WriteString("\n" + htmlClose)

	return Message{Subject: SubjectContact, Text: text, HTML: b.String()}
}

// FormatFranchise renders a franchise inquiry.
func FormatFranchise(s *model.Submission) Message {
	text := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nAddress: %s\nLocation: %s",
		s.Name, s.Email, s.Phone, s.Address, s.Location)

	var b strings.Builder
	b.WriteString(htmlOpen + "\n  <h2>New Franchise Inquiry</h2>\n")
	b.WriteString(field("Name", s.Name))
	b.WriteString(field("Email", s.Email))
	b.WriteString(field("Phone", s.Phone))
	b.WriteString(field("Address", s.Address))
	b.WriteString(field("Location", s.Location))
	b.WriteString("  ")
	fmt.Fprintf(&b, footerFmt, "franchise page")
	b.WriteString("\n" + htmlClose)

	return Message{Subject: SubjectFranchise, Text: text, HTML: b.String()}
}

// FormatEnquiry renders a course enquiry.
func FormatEnquiry(s *model.Submission) Message {
	text := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nSubject: %s\nMessage: %s",
		s.Name, s.Email, s.Phone, s.Subject, s.Message)

	var b strings.Builder
	b.WriteString(htmlOpen + "\n  <h2>New Enquiry</h2>\n")
	b.WriteString(field("Name", s.Name))
	b.WriteString(field("Email", s.Email))
	b.WriteString(field("Phone", s.Phone))
	b.WriteString(field("Subject", s.Subject))
	b.WriteString("  <p><strong>Message:</strong></p>\n")
	fmt.Fprintf(&b, "  <p>%s</p>\n  ", multiline(s.Message))
	fmt.Fprintf(&b, footerFmt, "website enquiry form")
	b.WriteString("\n" + htmlClose)

	return Message{Subject: SubjectEnquiry, Text: text, HTML: b.String()}
}

// Format dispatches on the submission type.
func Format(s *model.Submission) (Message, error) {
	switch s.Type {
	case model.SubmissionContact:
		return FormatContact(s), nil
	case model.SubmissionFranchise:
		return FormatFranchise(s), nil
	case model.SubmissionEnquiry:
		return FormatEnquiry(s), nil
	}
	return Message{}, fmt.Errorf("unknown submission type %q", s.Type)
}
