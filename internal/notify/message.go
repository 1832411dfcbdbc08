package notify

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// SubjectPrefix starts every notification subject.
const SubjectPrefix = "New Portfolio Contact: "

var (
	//go:embed templates/contact.txt
	contactTextRaw string
	//go:embed templates/contact.html
	contactHTMLRaw string

	contactText = texttemplate.Must(texttemplate.New("contact.txt").Parse(contactTextRaw))
	contactHTML = htmltemplate.Must(htmltemplate.New("contact.html").Parse(contactHTMLRaw))
)

// Email is a rendered notification ready for a Mailer.
type Email struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

type contactView struct {
	MessageID   string
	SenderName  string
	SenderEmail string
	Subject     string
	Content     string
	SubmittedAt string
	SentAt      string
}

// BuildEmail renders the operator notification for a payload.
func BuildEmail(p Payload, from, to string, sentAt time.Time) (Email, error) {
	view := contactView{
		MessageID:   p.MessageID,
		SenderName:  p.SenderName,
		SenderEmail: p.SenderEmail,
		Subject:     p.Subject,
		Content:     p.Content,
		SubmittedAt: p.SubmittedTime().Format(time.RFC3339),
		SentAt:      sentAt.UTC().Format(time.RFC3339),
	}

	var text bytes.Buffer
	if err := contactText.Execute(&text, view); err != nil {
		return Email{}, fmt.Errorf("render text body: %w", err)
	}

	var html bytes.Buffer
	if err := contactHTML.Execute(&html, view); err != nil {
		return Email{}, fmt.Errorf("render html body: %w", err)
	}

	return Email{
		From:    from,
		To:      to,
		ReplyTo: p.SenderEmail,
		Subject: Subject(p.Subject),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// headerSafe folds line breaks so user input cannot add headers.
var headerSafe = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Subject builds the notification subject line.
func Subject(subject string) string {
	subject = strings.TrimSpace(headerSafe.Replace(subject))
	if subject == "" {
		subject = "No Subject"
	}
	return SubjectPrefix + subject
}
