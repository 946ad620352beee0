package audit

import (
	"fmt"
	"strconv"
	"strings"
)

// Grant operations
const (
	GrantCreate = "create"
	GrantUpdate = "update"
	GrantDelete = "delete"
)

var grantPastTense = map[string]string{
	GrantCreate: "created",
	GrantUpdate: "updated",
	GrantDelete: "deleted",
}

// GrantEvent records a write to a group/module permission grant
type GrantEvent struct {
	Username     string
	ClientIP     string
	Operation    string
	GrantID      uint
	Group        string
	Module       string
	Permissions  []string
	Success      bool
	ErrorMessage string
}

func (e GrantEvent) MessageID() string {
	return "grant"
}

func (e GrantEvent) Message() string {
	target := fmt.Sprintf("permissions of group %s on module %s", e.Group, e.Module)
	if e.Success {
		return fmt.Sprintf("%s %s %s", e.Username, grantPastTense[e.Operation], target)
	}
	msg := fmt.Sprintf("%s tried to %s %s", e.Username, e.Operation, target)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e GrantEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e GrantEvent) Facility() int {
	return FacilityAuth
}

func (e GrantEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
		},
		SDIDSubject: {
			"group":  e.Group,
			"module": e.Module,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if e.GrantID != 0 {
		sd[SDIDSubject]["grant"] = strconv.FormatUint(uint64(e.GrantID), 10)
	}
	if len(e.Permissions) > 0 {
		sd[SDIDSubject]["permissions"] = strings.Join(e.Permissions, ",")
	}
	return sd
}
