package identity

import "time"

// Credential is one stored (identifier, digest) pair.
type Credential struct {
	Identifier string
	Digest     string
	CreatedAt  time.Time
}

// Credentials request structure.
type Credentials struct {
	Identifier string
	Password   string
}
