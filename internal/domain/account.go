package domain

import (
	"strings"
	"time"
)

// MaxRecentViews caps Account.RecentViews.
const MaxRecentViews = 10

type Account struct {
	AccountID    string       `json:"id" dynamodbav:"account_id"`
	Username     string       `json:"username" dynamodbav:"username"`
	Email        string       `json:"email" dynamodbav:"email"`
	Mobile       *string      `json:"mobile,omitempty" dynamodbav:"mobile"`
	PasswordHash string       `json:"-" dynamodbav:"password_hash"`
	IsPrivileged bool         `json:"is_privileged" dynamodbav:"is_privileged"`
	Interests    []string     `json:"interests" dynamodbav:"interests"`
	RecentViews  []RecentView `json:"-" dynamodbav:"recent_views"`
	Version      int64        `json:"-" dynamodbav:"version"`
	CreatedAt    time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time    `json:"updated" dynamodbav:"updated_at"`
}

// Sanitized returns a copy safe to hand to callers outside the credential store.
func (a *Account) Sanitized() *Account {
	c := *a
	c.PasswordHash = ""
	c.Interests = append([]string(nil), a.Interests...)
	c.RecentViews = append([]RecentView(nil), a.RecentViews...)
	if a.Mobile != nil {
		m := *a.Mobile
		c.Mobile = &m
	}
	return &c
}

// RecentView is one entry of an account's view history, newest first.
type RecentView struct {
	ItemID   string    `json:"item_id" dynamodbav:"item_id"`
	ViewedAt time.Time `json:"viewed_at" dynamodbav:"viewed_at"`
}

type SignupRequest struct {
	Username string  `json:"username" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	OTP      string  `json:"otp" validate:"required,numeric"`
	Mobile   *string `json:"mobile" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateInterestsRequest struct {
	Interests []string `json:"interests" validate:"max=32,dive,required,max=64"`
}

// NormalizeEmail is the canonical form used as account lookup key and OTC subject key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
