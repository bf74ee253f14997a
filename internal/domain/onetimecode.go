package domain

import "time"

// Purposes a one-time code can be issued for.
const (
	PurposeSignup = "signup"
	PurposeReset  = "reset"
)

// MaxCodeAttempts is the number of failed verifications a code survives.
// The failure that reaches it discards the code.
const MaxCodeAttempts = 5

// OneTimeCode is the single live verification code for a subject.
// PK: subject_key (normalised email). Issuing a new code overwrites the item.
// IssuedAt and ExpiresAt are Unix milliseconds and ExpiresAt is authoritative.
// TTL is ExpiresAt rounded up to whole seconds, for the DynamoDB TTL sweeper only.
type OneTimeCode struct {
	SubjectKey string `json:"subject_key" dynamodbav:"subject_key"`
	Purpose    string `json:"purpose" dynamodbav:"purpose"`
	Code       string `json:"-" dynamodbav:"code"`
	IssuedAt   int64  `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt  int64  `json:"expires_at" dynamodbav:"expires_at_ms"`
	TTL        int64  `json:"-" dynamodbav:"expires_at"`
	Attempts   int    `json:"-" dynamodbav:"attempts"`
}

// NewOneTimeCode builds a fresh code for subjectKey valid for ttl from now.
func NewOneTimeCode(subjectKey, purpose, code string, now time.Time, ttl time.Duration) OneTimeCode {
	expires := now.Add(ttl).UnixMilli()
	return OneTimeCode{
		SubjectKey: subjectKey,
		Purpose:    purpose,
		Code:       code,
		IssuedAt:   now.UnixMilli(),
		ExpiresAt:  expires,
		TTL:        (expires + 999) / 1000,
	}
}

// Expired reports whether the code is no longer usable at now.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.UnixMilli() > c.ExpiresAt
}

// Exhausted reports whether the code has used up its failed attempts.
func (c *OneTimeCode) Exhausted() bool {
	return c.Attempts >= MaxCodeAttempts
}
