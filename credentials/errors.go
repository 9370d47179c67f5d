package credentials

import "fmt"

type (
	CredentialNotFound struct {
		Slug string
	}

	InvalidHash struct {
		Reason string
		cause  error
	}
)

func (c CredentialNotFound) Error() string {
	return fmt.Sprintf("no credential for slug %v", c.Slug)
}

func (i InvalidHash) Error() string {
	if i.cause != nil {
		return fmt.Sprintf("invalid password hash: %v, cause %v", i.Reason, i.cause)
	}
	return fmt.Sprintf("invalid password hash: %v", i.Reason)
}

func (i InvalidHash) Unwrap() error {
	return i.cause
}
