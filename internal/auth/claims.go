package auth

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the only supported JWT claims shape for this service.
// iss and aud both carry the server base URL; uid is the sole application claim.
type Claims struct {
	jwt.RegisteredClaims

	UID UID `json:"uid"`
}

// MarshalJSON writes a single audience as a plain string; several audiences
// stay an array. Both forms decode through jwt.ClaimStrings.
func (c Claims) MarshalJSON() ([]byte, error) {
	type registered jwt.RegisteredClaims
	return json.Marshal(struct {
		registered
		Audience audience `json:"aud,omitempty"`
		UID      UID      `json:"uid"`
	}{registered(c.RegisteredClaims), audience(c.Audience), c.UID})
}

type audience []string

func (a audience) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// UID identifies the authenticated user. Canonical decimal integers are encoded
// as JSON numbers, anything else as a JSON string, so numeric database ids
// survive a round trip through clients that read the claim as a number.
type UID string

func (u UID) String() string { return string(u) }

func (u UID) isInteger() bool {
	n, err := strconv.ParseInt(string(u), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(u)
}

func (u UID) MarshalJSON() ([]byte, error) {
	if u.isInteger() {
		return []byte(u), nil
	}
	return json.Marshal(string(u))
}

func (u *UID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*u = UID(s)
		return nil
	}
	if string(b) == "null" {
		*u = ""
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("uid must be a string or integer, got %s", b)
	}
	*u = UID(strconv.FormatInt(n, 10))
	return nil
}
