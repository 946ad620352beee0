package audit

import "fmt"

// Account operations performed from the CLI
const (
	AccountCreate      = "create-user"
	AccountSetPassword = "set-password"
	AccountSeed        = "seed"
)

// AccountEvent records an operator action on users or reference data
type AccountEvent struct {
	Operator     string
	Operation    string
	Subject      string
	Success      bool
	ErrorMessage string
}

func (e AccountEvent) MessageID() string {
	return "account"
}

func (e AccountEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s performed %s on %s", e.Operator, e.Operation, e.Subject)
	}
	msg := fmt.Sprintf("%s failed to perform %s on %s", e.Operator, e.Operation, e.Subject)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AccountEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityError
}

func (e AccountEvent) Facility() int {
	return FacilityAuth
}

func (e AccountEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Operator,
		},
		SDIDSubject: {
			"target": e.Subject,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
}
