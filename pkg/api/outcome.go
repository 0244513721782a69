package api

// Outcome is the single terminal result of a config read.
type Outcome struct {
	Kind Kind

	// Body is the configuration value for KindOK and the fixed kind
	// message otherwise.
	Body string

	// AccountID is the resolved caller account, when one was resolved.
	// It is carried for logging only and never written to the client.
	AccountID string

	// Err is the underlying cause of a KindInternalError outcome.
	Err error
}

// OK returns a successful outcome carrying the configuration value.
func OK(value string) Outcome {
	return Outcome{Kind: KindOK, Body: value}
}

// Reject returns a rejection outcome of the given kind.
func Reject(kind Kind) Outcome {
	return Outcome{Kind: kind, Body: kind.Message()}
}

// Internal returns a KindInternalError outcome wrapping err.
func Internal(err error) Outcome {
	return Outcome{Kind: KindInternalError, Body: KindInternalError.Message(), Err: err}
}

// WithAccount returns a copy of o annotated with the resolved account.
func (o Outcome) WithAccount(accountID string) Outcome {
	o.AccountID = accountID
	return o
}
