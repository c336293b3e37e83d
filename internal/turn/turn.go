// Package turn decides whether a role may currently post. The decision is a
// pure function of the session's join state and the last two messages of its
// log; no turn pointer is ever stored.
package turn

import (
	"fmt"

	"github.com/whimsylab/couplescourt/internal/model/court"
)

// Policy selects the gating rule applied to message submission.
type Policy string

const (
	// PolicyStrict alternates turns: a role that already appears among the
	// last two messages must wait for the other side to respond.
	PolicyStrict Policy = "strict"
	// PolicyUnrestricted lets any joined participant post at any time.
	PolicyUnrestricted Policy = "unrestricted"
)

// ParsePolicy validates a policy name, defaulting to unrestricted for the
// empty string.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyStrict, PolicyUnrestricted:
		return Policy(s), nil
	case "":
		return PolicyUnrestricted, nil
	}
	return "", fmt.Errorf("unknown turn policy %q", s)
}

// tail returns at most the last two messages. The gating rule only looks at
// the immediate round, not the full history.
func tail(msgs []court.Message) []court.Message {
	if len(msgs) > 2 {
		return msgs[len(msgs)-2:]
	}
	return msgs
}

// HasResponded reports whether role appears among the senders of the last
// two messages.
func HasResponded(msgs []court.Message, role court.Role) bool {
	for _, m := range tail(msgs) {
		if m.Sender == role {
			return true
		}
	}
	return false
}

// BothResponded reports whether both roles appear among the senders of the
// last two messages.
func BothResponded(msgs []court.Message) bool {
	return HasResponded(msgs, court.RoleA) && HasResponded(msgs, court.RoleB)
}

// CanSend reports whether role may post now. Role B is always blocked until
// it joins; after that the policy decides.
func CanSend(p Policy, s court.Session, msgs []court.Message, role court.Role) bool {
	if role == court.RoleB && !s.UserBJoined {
		return false
	}
	if p == PolicyStrict {
		return !HasResponded(msgs, role)
	}
	return true
}
