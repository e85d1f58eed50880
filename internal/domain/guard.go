package domain

// GuardResult is the outcome of a pre-request guard check.
type GuardResult struct {
	Allowed bool
	Reason  string
	Guard   string
}
