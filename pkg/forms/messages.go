package forms

import (
	"fmt"

	"golang.org/x/text/message"
)

// Message keys. They double as English source strings for the translation
// catalogs in pkg/i18n.
const (
	MsgRequired       = "This field is required."
	MsgInvalidChoice  = "Select a valid choice. %s is not one of the available choices."
	MsgSingleModule   = "Select exactly one module when editing a grant."
	MsgGroupRequired  = "group: This field is required."
	MsgDuplicateGrant = "Permissions for group '%s' and module '%s' already exist."
)

// Printer formats a message key in the request's language.
// *message.Printer satisfies it.
type Printer interface {
	Sprintf(key message.Reference, a ...interface{}) string
}

type plainPrinter struct{}

func (plainPrinter) Sprintf(key message.Reference, a ...interface{}) string {
	format, _ := key.(string)
	return fmt.Sprintf(format, a...)
}
