package audit

import "fmt"

// CheckEvent represents a permission check on a console page
type CheckEvent struct {
	Username string
	ClientIP string
	Codename string
	Path     string
	Allowed  bool
}

func (e CheckEvent) MessageID() string {
	return "check"
}

func (e CheckEvent) Message() string {
	if e.Allowed {
		return fmt.Sprintf("%s checked permission %s on %s: allowed", e.Username, e.Codename, e.Path)
	}
	return fmt.Sprintf("%s checked permission %s on %s: denied", e.Username, e.Codename, e.Path)
}

func (e CheckEvent) Severity() Severity {
	if e.Allowed {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e CheckEvent) Facility() int {
	return FacilityAuthPriv
}

func (e CheckEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
		},
		SDIDSubject: {
			"path":       e.Path,
			"permission": e.Codename,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "check",
			"result":    result(e.Allowed),
		},
	}
}
