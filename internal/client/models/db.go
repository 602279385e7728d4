// Package models defines the request and response shapes exchanged with the
// MedHelper API.
package models

import "time"

// SignUp is the registration payload.
type SignUp struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"fullname"`
	Password2 string `json:"password2"`
}

// PasswordReset completes a password reset started from an emailed link.
type PasswordReset struct {
	UIDB64   string `json:"uidb64"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// CartItem is one line of the shopping cart. The client only counts them.
type CartItem struct {
	ID       int64  `json:"id"`
	TestName string `json:"test_name,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// Notification is a message from the notification feed.
type Notification struct {
	ID        int64     `json:"id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationPage is one page of the notification feed. Next is the URL of
// the following page, nil on the last one.
type NotificationPage struct {
	Results []Notification `json:"results"`
	Next    *string        `json:"next"`
}

// HasMore reports whether another page exists.
func (p NotificationPage) HasMore() bool {
	return p.Next != nil && *p.Next != ""
}

// Unread counts results not yet marked read.
func (p NotificationPage) Unread() int {
	n := 0
	for _, r := range p.Results {
		if !r.Read {
			n++
		}
	}
	return n
}
