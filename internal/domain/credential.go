package domain

// Token is a GitHub personal access token. It is masked in log output.
type Token string

// String returns the raw token value.
func (t Token) String() string {
	return string(t)
}
