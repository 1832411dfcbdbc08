package model

import "time"

// ContactMessage is an inquiry submitted through the contact form.
// Records are immutable once persisted.
type ContactMessage struct {
	ID          string    `json:"id" bson:"_id"`
	SenderName  string    `json:"sender_name" bson:"sender_name"`
	SenderEmail string    `json:"sender_email" bson:"sender_email"`
	Subject     string    `json:"subject" bson:"subject"`
	Content     string    `json:"content" bson:"content"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

// ContactMessageInput carries the client-supplied fields of a contact message.
type ContactMessageInput struct {
	SenderName  string
	SenderEmail string
	Subject     string
	Content     string
}
