package dynamo

// DynamoDB attribute names used in key, condition and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldAccountID    = "account_id"
	fieldEmail        = "email"
	fieldPasswordHash = "password_hash"
	fieldInterests    = "interests"
	fieldRecentViews  = "recent_views"
	fieldVersion      = "version"
	fieldUpdatedAt    = "updated_at"

	fieldSubjectKey = "subject_key"
	fieldPurpose    = "purpose"
	fieldCode       = "code"
	fieldExpiresAt  = "expires_at_ms"
	fieldTTL        = "expires_at"
	fieldAttempts   = "attempts"

	// emailGuardPrefix marks the items that reserve an email in the accounts table.
	emailGuardPrefix = "EMAIL#"
	emailIndex       = "email-index"
)
