package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
)

// Field names.
const (
	FieldGroup       = "group"
	FieldModules     = "modules"
	FieldPermissions = "permissions"
	FieldMenus       = "menus"

	// NonFieldErrors holds record-level errors.
	NonFieldErrors = "__all__"
)

// Catalog resolves submitted ids to rows. Unknown ids are omitted from the result.
type Catalog interface {
	FindGroups(ctx context.Context, ids []uint) ([]model.Group, error)
	FindModules(ctx context.Context, ids []uint) ([]model.Module, error)
	FindPermissions(ctx context.Context, ids []uint) ([]model.Permission, error)
	FindMenus(ctx context.Context, ids []uint) ([]model.Menu, error)
}

// Data is the raw submitted input.
type Data struct {
	Group       string   `json:"group"`
	Modules     []string `json:"modules"`
	Permissions []string `json:"permissions"`
	Menus       []string `json:"menus"`
}

// Cleaned is the validated input.
type Cleaned struct {
	Group       *model.Group
	Modules     []model.Module
	Permissions []model.Permission
	Menus       []model.Menu
}

// ModuleIDs returns the ids of the cleaned modules.
func (c Cleaned) ModuleIDs() []uint {
	return idsOf(c.Modules, moduleID)
}

// PermissionIDs returns the ids of the cleaned permissions.
func (c Cleaned) PermissionIDs() []uint {
	return idsOf(c.Permissions, permissionID)
}

// Errors maps a field name to its messages.
type Errors map[string][]string

// GroupModulePermissionForm assigns permissions to a group on one or more modules.
type GroupModulePermissionForm struct {
	data    Data
	update  bool
	errors  Errors
	cleaned Cleaned
	bound   bool
}

// New returns an unbound, empty form. Update forms accept exactly one module.
func New(update bool) *GroupModulePermissionForm {
	return &GroupModulePermissionForm{update: update, errors: Errors{}}
}

// FromGrant returns an unbound form prefilled from an existing grant.
func FromGrant(grant *model.GroupModulePermission) *GroupModulePermissionForm {
	f := New(true)
	f.data.Group = formatID(grant.GroupID)
	f.data.Modules = []string{formatID(grant.ModuleID)}
	for _, id := range grant.PermissionIDs() {
		f.data.Permissions = append(f.data.Permissions, formatID(id))
	}
	return f
}

// Bind returns a bound form holding data.
func Bind(data Data, update bool) *GroupModulePermissionForm {
	f := New(update)
	f.data = data
	f.bound = true
	return f
}

// FromRequest decodes a JSON or urlencoded request body into a bound form.
func FromRequest(r *http.Request, update bool) (*GroupModulePermissionForm, error) {
	if IsJSON(r) {
		data, err := decodeJSON(r)
		if err != nil {
			return nil, err
		}
		return Bind(data, update), nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	return Bind(Data{
		Group:       strings.TrimSpace(r.PostForm.Get(FieldGroup)),
		Modules:     r.PostForm[FieldModules],
		Permissions: r.PostForm[FieldPermissions],
		Menus:       r.PostForm[FieldMenus],
	}, update), nil
}

// IsJSON reports whether the request body is JSON.
func IsJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func decodeJSON(r *http.Request) (Data, error) {
	var raw struct {
		Group       interface{}   `json:"group"`
		Modules     []interface{} `json:"modules"`
		Permissions []interface{} `json:"permissions"`
		Menus       []interface{} `json:"menus"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return Data{}, fmt.Errorf("invalid JSON body: %w", err)
	}

	data := Data{
		Modules:     stringify(raw.Modules),
		Permissions: stringify(raw.Permissions),
		Menus:       stringify(raw.Menus),
	}
	if raw.Group != nil {
		data.Group = fmt.Sprint(raw.Group)
	}
	return data, nil
}

func stringify(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// Data returns the raw input.
func (f *GroupModulePermissionForm) Data() Data {
	return f.data
}

// IsBound reports whether the form carries submitted data.
func (f *GroupModulePermissionForm) IsBound() bool {
	return f.bound
}

// IsUpdate reports whether the form edits an existing grant.
func (f *GroupModulePermissionForm) IsUpdate() bool {
	return f.update
}

// Errors returns the validation errors collected so far.
func (f *GroupModulePermissionForm) Errors() Errors {
	return f.errors
}

// FieldErrors returns the messages for one field.
func (f *GroupModulePermissionForm) FieldErrors(field string) []string {
	return f.errors[field]
}

// AddError appends a message to a field, or to NonFieldErrors.
func (f *GroupModulePermissionForm) AddError(field, message string) {
	f.errors[field] = append(f.errors[field], message)
}

// Valid reports whether the form has no errors.
func (f *GroupModulePermissionForm) Valid() bool {
	return len(f.errors) == 0
}

// Cleaned returns the validated rows. Only meaningful after Validate.
func (f *GroupModulePermissionForm) Cleaned() Cleaned {
	return f.cleaned
}

// IsSelected reports whether id was submitted (or prefilled) for field.
func (f *GroupModulePermissionForm) IsSelected(field string, id uint) bool {
	want := formatID(id)
	var values []string
	switch field {
	case FieldGroup:
		return strings.TrimSpace(f.data.Group) == want
	case FieldModules:
		values = f.data.Modules
	case FieldPermissions:
		values = f.data.Permissions
	case FieldMenus:
		values = f.data.Menus
	}
	for _, v := range values {
		if strings.TrimSpace(v) == want {
			return true
		}
	}
	return false
}

// Validate checks every field against the catalog and fills Cleaned.
// A nil printer formats messages in English.
func (f *GroupModulePermissionForm) Validate(ctx context.Context, catalog Catalog, p Printer) (bool, error) {
	if p == nil {
		p = plainPrinter{}
	}
	f.errors = Errors{}
	f.cleaned = Cleaned{}

	if group := strings.TrimSpace(f.data.Group); group != "" {
		id, ok := parseID(group)
		if !ok {
			f.AddError(FieldGroup, p.Sprintf(MsgInvalidChoice, group))
		} else {
			groups, err := catalog.FindGroups(ctx, []uint{id})
			if err != nil {
				return false, err
			}
			if len(groups) == 0 {
				f.AddError(FieldGroup, p.Sprintf(MsgInvalidChoice, group))
			} else {
				f.cleaned.Group = &groups[0]
			}
		}
	}

	moduleIDs, ok := f.parseMultiple(FieldModules, f.data.Modules, true, p)
	if ok {
		modules, err := catalog.FindModules(ctx, moduleIDs)
		if err != nil {
			return false, err
		}
		f.cleaned.Modules = orderByID(modules, moduleIDs, moduleID)
		if missing, found := firstMissing(moduleIDs, idsOf(modules, moduleID)); found {
			f.AddError(FieldModules, p.Sprintf(MsgInvalidChoice, formatID(missing)))
		} else if f.update && len(f.cleaned.Modules) != 1 {
			f.AddError(FieldModules, p.Sprintf(MsgSingleModule))
		}
	}

	permissionIDs, ok := f.parseMultiple(FieldPermissions, f.data.Permissions, true, p)
	if ok {
		permissions, err := catalog.FindPermissions(ctx, permissionIDs)
		if err != nil {
			return false, err
		}
		f.cleaned.Permissions = orderByID(permissions, permissionIDs, permissionID)
		if missing, found := firstMissing(permissionIDs, idsOf(permissions, permissionID)); found {
			f.AddError(FieldPermissions, p.Sprintf(MsgInvalidChoice, formatID(missing)))
		}
	}

	menuIDs, ok := f.parseMultiple(FieldMenus, f.data.Menus, false, p)
	if ok && len(menuIDs) > 0 {
		menus, err := catalog.FindMenus(ctx, menuIDs)
		if err != nil {
			return false, err
		}
		f.cleaned.Menus = orderByID(menus, menuIDs, menuID)
		if missing, found := firstMissing(menuIDs, idsOf(menus, menuID)); found {
			f.AddError(FieldMenus, p.Sprintf(MsgInvalidChoice, formatID(missing)))
		}
	}

	return f.Valid(), nil
}

// ValidateRecord applies the checks the record enforces beyond its fields.
// It runs after Validate succeeded and before the grant is saved.
func (f *GroupModulePermissionForm) ValidateRecord(p Printer) bool {
	if p == nil {
		p = plainPrinter{}
	}
	if f.cleaned.Group == nil {
		f.AddError(NonFieldErrors, p.Sprintf(MsgGroupRequired))
	}
	return f.Valid()
}

// parseMultiple parses and deduplicates ids, preserving first-seen order.
// It reports false when a field error was recorded.
func (f *GroupModulePermissionForm) parseMultiple(field string, values []string, required bool, p Printer) ([]uint, bool) {
	ids := make([]uint, 0, len(values))
	seen := make(map[uint]bool, len(values))
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, ok := parseID(raw)
		if !ok {
			f.AddError(field, p.Sprintf(MsgInvalidChoice, raw))
			return nil, false
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if required && len(ids) == 0 {
		f.AddError(field, p.Sprintf(MsgRequired))
		return nil, false
	}
	return ids, true
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func firstMissing(want []uint, have []uint) (uint, bool) {
	present := make(map[uint]bool, len(have))
	for _, id := range have {
		present[id] = true
	}
	for _, id := range want {
		if !present[id] {
			return id, true
		}
	}
	return 0, false
}

// orderByID returns items in the order of ids, dropping unknown ids.
func orderByID[T any](items []T, ids []uint, idOf func(T) uint) []T {
	byID := make(map[uint]T, len(items))
	for _, item := range items {
		byID[idOf(item)] = item
	}
	out := make([]T, 0, len(items))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

func idsOf[T any](items []T, idOf func(T) uint) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, idOf(item))
	}
	return ids
}

func moduleID(m model.Module) uint {
	return m.ID
}

func permissionID(p model.Permission) uint {
	return p.ID
}

func menuID(m model.Menu) uint {
	return m.ID
}
