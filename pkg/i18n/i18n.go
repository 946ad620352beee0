// Package i18n translates user-facing console messages.
//
// Message keys are English source strings; the English catalog is the
// identity and the Spanish catalog carries the translations. The request
// language is matched from Accept-Language against the supported tags,
// falling back to the configured default.
package i18n

import (
	"fmt"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/doodlesbykumbi/rbac-console/pkg/forms"
)

// Console messages.
const (
	MsgGrantCreated      = "Permissions assigned to group %s on module %s."
	MsgGrantUpdated      = "Permissions for group '%s' and module '%s' updated successfully."
	MsgGrantDeleted      = "Permissions for group '%s' and module '%s' deleted successfully."
	MsgDeleteDescription = "Delete the permissions for group '%s' and module '%s'?"

	MsgListTitle    = "Group and module permissions"
	MsgCreateTitle  = "Assign permissions"
	MsgUpdateTitle  = "Edit permissions"
	MsgDeleteTitle  = "Delete permissions"
	MsgCreateSubmit = "Save"
	MsgUpdateSubmit = "Update Permissions by Group and Module"
	MsgDeleteSubmit = "Delete Permissions by Group and Module"

	MsgInvalidCredentials = "Invalid username or password."
	MsgLoggedOut          = "You have been logged out."
	MsgForbidden          = "You do not have permission to access this page."
	MsgNotFound           = "The requested page was not found."
	MsgServerError        = "Something went wrong. Please try again later."

	// Page labels.
	MsgLabelGroup       = "Group"
	MsgLabelModule      = "Module"
	MsgLabelModules     = "Modules"
	MsgLabelPermissions = "Permissions"
	MsgLabelMenus       = "Menus"
	MsgLabelUsername    = "Username"
	MsgLabelPassword    = "Password"
	MsgSearch           = "Search"
	MsgNew              = "New"
	MsgEdit             = "Edit"
	MsgDelete           = "Delete"
	MsgBack             = "Back"
	MsgLogin            = "Log in"
	MsgLogout           = "Log out"
	MsgNoResults        = "No permissions have been assigned yet."
	MsgPrevious         = "Previous"
	MsgNext             = "Next"
	MsgPageOf           = "Page %d of %d"
)

var spanish = map[string]string{
	MsgGrantCreated:      "Permisos asignados correctamente al grupo %s sobre el módulo %s.",
	MsgGrantUpdated:      "Permisos para grupo '%s' y módulo '%s' actualizados con éxito.",
	MsgGrantDeleted:      "Permisos para grupo '%s' y módulo '%s' eliminados con éxito.",
	MsgDeleteDescription: "¿Desea eliminar los permisos para el grupo '%s' y el módulo '%s'?",

	MsgListTitle:    "Permisos por grupo y módulo",
	MsgCreateTitle:  "Asignar permisos",
	MsgUpdateTitle:  "Editar permisos",
	MsgDeleteTitle:  "Eliminar permisos",
	MsgCreateSubmit: "Grabar",
	MsgUpdateSubmit: "Actualizar Permisos por Grupo y Módulo",
	MsgDeleteSubmit: "Eliminar Permisos por Grupo y Módulo",

	MsgInvalidCredentials: "Usuario o contraseña incorrectos.",
	MsgLoggedOut:          "Ha cerrado sesión.",
	MsgForbidden:          "No tiene permisos para acceder a esta página.",
	MsgNotFound:           "La página solicitada no existe.",
	MsgServerError:        "Ocurrió un error. Intente nuevamente más tarde.",

	MsgLabelGroup:       "Grupo",
	MsgLabelModule:      "Módulo",
	MsgLabelModules:     "Módulos",
	MsgLabelPermissions: "Permisos",
	MsgLabelMenus:       "Menús",
	MsgLabelUsername:    "Usuario",
	MsgLabelPassword:    "Contraseña",
	MsgSearch:           "Buscar",
	MsgNew:              "Nuevo",
	MsgEdit:             "Editar",
	MsgDelete:           "Eliminar",
	MsgBack:             "Volver",
	MsgLogin:            "Iniciar sesión",
	MsgLogout:           "Cerrar sesión",
	MsgNoResults:        "Aún no se han asignado permisos.",
	MsgPrevious:         "Anterior",
	MsgNext:             "Siguiente",
	MsgPageOf:           "Página %d de %d",

	forms.MsgRequired:       "Este campo es obligatorio.",
	forms.MsgInvalidChoice:  "Escoja una opción válida. %s no es una de las opciones disponibles.",
	forms.MsgSingleModule:   "Seleccione exactamente un módulo al editar los permisos.",
	forms.MsgGroupRequired:  "grupo: Este campo es obligatorio.",
	forms.MsgDuplicateGrant: "Ya existen permisos para el grupo '%s' y el módulo '%s'.",
}

// Localizer picks a language per request and formats messages in it.
type Localizer struct {
	catalog   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
}

// New builds a Localizer whose fallback language is defaultLang ("es" or "en").
func New(defaultLang string) (*Localizer, error) {
	fallback, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("invalid default language %q: %w", defaultLang, err)
	}

	var supported []language.Tag
	switch fallback {
	case language.Spanish:
		supported = []language.Tag{language.Spanish, language.English}
	case language.English:
		supported = []language.Tag{language.English, language.Spanish}
	default:
		return nil, fmt.Errorf("unsupported default language %q", defaultLang)
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, translation := range spanish {
		if err := b.SetString(language.Spanish, key, translation); err != nil {
			return nil, err
		}
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, err
		}
	}

	return &Localizer{
		catalog:   b,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}, nil
}

// Default returns the fallback language.
func (l *Localizer) Default() language.Tag {
	return l.supported[0]
}

// Match resolves an Accept-Language header to a supported language.
func (l *Localizer) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.Default()
	}
	_, index, confidence := l.matcher.Match(tags...)
	if confidence == language.No {
		return l.Default()
	}
	return l.supported[index]
}

// Printer returns a printer for tag.
func (l *Localizer) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(l.catalog))
}

// ForRequest returns a printer in the request's language.
func (l *Localizer) ForRequest(r *http.Request) *message.Printer {
	return l.Printer(l.Match(r.Header.Get("Accept-Language")))
}
