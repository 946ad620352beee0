package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/doodlesbykumbi/rbac-console/pkg/audit"
	"github.com/doodlesbykumbi/rbac-console/pkg/forms"
	"github.com/doodlesbykumbi/rbac-console/pkg/i18n"
	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/middleware"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

const grantsBasePath = "/security/group-module-permissions"

func grantListURL() string {
	return grantsBasePath + "/"
}

func grantCreateURL() string {
	return grantsBasePath + "/create"
}

func grantUpdateURL(id uint) string {
	return fmt.Sprintf("%s/%d/update", grantsBasePath, id)
}

func grantDeleteURL(id uint) string {
	return fmt.Sprintf("%s/%d/delete", grantsBasePath, id)
}

func codename(action model.Action) string {
	return action.Codename(model.GroupModulePermissionCodename)
}

// RegisterGroupModulePermissionEndpoints registers the grant list, create,
// update and delete pages
func RegisterGroupModulePermissionEndpoints(s *server.Server) {
	grants := s.GrantsStore
	catalog := s.CatalogStore
	authorizer := &middleware.Authorizer{
		Authz:   s.AuthzStore,
		Metrics: s.Metrics,
		Logger:  s.Logger,
		Denied: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.RenderError(w, r, http.StatusForbidden, i18n.MsgForbidden)
		}),
	}

	// GET /security/group-module-permissions/
	s.Router.Handle(grantListURL(),
		authorizer.Require(codename(model.ActionView))(handleListGrants(s, grants)),
	).Methods("GET")

	// GET|POST /security/group-module-permissions/create
	s.Router.Handle(grantCreateURL(),
		authorizer.Require(codename(model.ActionAdd))(handleCreateGrant(s, grants, catalog)),
	).Methods("GET", "POST")

	// GET|POST /security/group-module-permissions/{id}/update
	s.Router.Handle(grantsBasePath+"/{id:[0-9]+}/update",
		authorizer.Require(codename(model.ActionChange))(handleUpdateGrant(s, grants, catalog)),
	).Methods("GET", "POST")

	// GET|POST /security/group-module-permissions/{id}/delete
	s.Router.Handle(grantsBasePath+"/{id:[0-9]+}/delete",
		authorizer.Require(codename(model.ActionDelete))(handleDeleteGrant(s, grants)),
	).Methods("GET", "POST")
}

// grantItem is one grant as shown in lists and JSON responses
type grantItem struct {
	ID          uint     `json:"id"`
	Group       string   `json:"group"`
	Module      string   `json:"module"`
	Permissions []string `json:"permissions"`
	UpdateURL   string   `json:"update_url"`
	DeleteURL   string   `json:"delete_url"`
}

func newGrantItem(grant model.GroupModulePermission) grantItem {
	return grantItem{
		ID:          grant.ID,
		Group:       grant.Group.Name,
		Module:      grant.Module.Name,
		Permissions: grant.PermissionNames(),
		UpdateURL:   grantUpdateURL(grant.ID),
		DeleteURL:   grantDeleteURL(grant.ID),
	}
}

type pagination struct {
	Page        int    `json:"page"`
	NumPages    int    `json:"num_pages"`
	PageSize    int    `json:"page_size"`
	Total       int64  `json:"total"`
	HasPrevious bool   `json:"has_previous"`
	HasNext     bool   `json:"has_next"`
	PreviousURL string `json:"previous_url,omitempty"`
	NextURL     string `json:"next_url,omitempty"`
}

func numPages(total int64, pageSize int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func newPagination(query string, page, pageSize int, total int64) pagination {
	p := pagination{
		Page:     page,
		NumPages: numPages(total, pageSize),
		PageSize: pageSize,
		Total:    total,
	}
	pageURL := func(n int) string {
		values := url.Values{}
		if query != "" {
			values.Set("q", query)
		}
		values.Set("page", strconv.Itoa(n))
		return grantListURL() + "?" + values.Encode()
	}
	if page > 1 {
		p.HasPrevious = true
		p.PreviousURL = pageURL(page - 1)
	}
	if page < p.NumPages {
		p.HasNext = true
		p.NextURL = pageURL(page + 1)
	}
	return p
}

type listContext struct {
	server.Page
	Items      []grantItem `json:"items"`
	Query      string      `json:"q"`
	CreateURL  string      `json:"create_url"`
	Pagination pagination  `json:"pagination"`
}

func handleListGrants(s *server.Server, grants store.GroupModulePermissionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		page := pageNumber(r)
		pageSize := s.Config.PageSize

		rows, total, err := grants.List(r.Context(), store.GrantFilter{
			Query:  query,
			Limit:  pageSize,
			Offset: (page - 1) * pageSize,
		})
		if err != nil {
			s.RenderInternalError(w, r, err)
			return
		}
		if page > numPages(total, pageSize) {
			s.RenderError(w, r, http.StatusNotFound, i18n.MsgNotFound)
			return
		}

		items := make([]grantItem, 0, len(rows))
		for _, row := range rows {
			items = append(items, newGrantItem(row))
		}

		s.Respond(w, r, http.StatusOK, server.PageGrantList, listContext{
			Page:       s.NewPage(w, r, i18n.MsgListTitle),
			Items:      items,
			Query:      query,
			CreateURL:  grantCreateURL(),
			Pagination: newPagination(query, page, pageSize, total),
		})
	}
}

type formContext struct {
	server.Page
	Form                  *forms.GroupModulePermissionForm `json:"-"`
	Update                bool                             `json:"-"`
	Data                  forms.Data                       `json:"data"`
	Errors                forms.Errors                     `json:"errors,omitempty"`
	Groups                []model.Group                    `json:"groups"`
	Modules               []model.Module                   `json:"modules"`
	Permissions           []model.Permission               `json:"permissions"`
	Menus                 []model.Menu                     `json:"menus"`
	SelectedPermissions   []uint                           `json:"selected_permissions"`
	ModulePermissionsJSON string                           `json:"module_permissions_json"`
	SubmitLabel           string                           `json:"submit_label"`
	ActionURL             string                           `json:"action_url"`
	BackURL               string                           `json:"back_url"`
}

// modulePermissionsJSON maps each module id to the module's own permissions
func modulePermissionsJSON(modules []model.Module) (string, error) {
	byModule := make(map[string][]model.PermissionRef, len(modules))
	for _, m := range modules {
		byModule[strconv.FormatUint(uint64(m.ID), 10)] = m.PermissionRefs()
	}
	out, err := json.Marshal(byModule)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// selectedPermissions returns the permission ids currently held by the form
func selectedPermissions(form *forms.GroupModulePermissionForm) []uint {
	selected := []uint{}
	for _, raw := range form.Data().Permissions {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err == nil && id > 0 {
			selected = append(selected, uint(id))
		}
	}
	return selected
}

type formPage struct {
	title       string
	submitLabel string
	actionURL   string
}

func renderGrantForm(s *server.Server, catalog store.CatalogStore, w http.ResponseWriter, r *http.Request, status int, form *forms.GroupModulePermissionForm, fp formPage) {
	ctx := r.Context()
	groups, err := catalog.ListGroups(ctx)
	if err != nil {
		s.RenderInternalError(w, r, err)
		return
	}
	modules, err := catalog.ListModules(ctx)
	if err != nil {
		s.RenderInternalError(w, r, err)
		return
	}
	permissions, err := catalog.ListPermissions(ctx)
	if err != nil {
		s.RenderInternalError(w, r, err)
		return
	}
	menus, err := catalog.ListMenus(ctx)
	if err != nil {
		s.RenderInternalError(w, r, err)
		return
	}
	moduleJSON, err := modulePermissionsJSON(modules)
	if err != nil {
		s.RenderInternalError(w, r, err)
		return
	}

	page := s.NewPage(w, r, fp.title)
	s.Respond(w, r, status, server.PageGrantForm, formContext{
		Page:                  page,
		Form:                  form,
		Update:                form.IsUpdate(),
		Data:                  form.Data(),
		Errors:                form.Errors(),
		Groups:                groups,
		Modules:               modules,
		Permissions:           permissions,
		Menus:                 menus,
		SelectedPermissions:   selectedPermissions(form),
		ModulePermissionsJSON: moduleJSON,
		SubmitLabel:           page.T(fp.submitLabel),
		ActionURL:             fp.actionURL,
		BackURL:               grantListURL(),
	})
}

// bindGrantForm decodes and validates the submitted form. It reports false
// when it already wrote a response.
func bindGrantForm(s *server.Server, catalog store.CatalogStore, w http.ResponseWriter, r *http.Request, update bool) (*forms.GroupModulePermissionForm, bool) {
	form, err := forms.FromRequest(r, update)
	if err != nil {
		if server.WantsJSON(r) {
			respondWithError(w, http.StatusBadRequest, err.Error())
		} else {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return nil, false
	}

	printer := s.Printer(r)
	if _, err := form.Validate(r.Context(), catalog, printer); err != nil {
		s.RenderInternalError(w, r, err)
		return nil, false
	}
	if form.Valid() {
		form.ValidateRecord(printer)
	}
	return form, true
}

// respondInvalid re-renders the form with 422, or returns the errors as JSON
func respondInvalid(s *server.Server, catalog store.CatalogStore, w http.ResponseWriter, r *http.Request, form *forms.GroupModulePermissionForm, fp formPage) {
	if server.WantsJSON(r) {
		respondWithJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": form.Errors()})
		return
	}
	renderGrantForm(s, catalog, w, r, http.StatusUnprocessableEntity, form, fp)
}

func moduleNames(modules []model.Module) string {
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Name)
	}
	return strings.Join(names, ", ")
}

func permissionNames(permissions []model.Permission) []string {
	names := make([]string, 0, len(permissions))
	for _, p := range permissions {
		names = append(names, p.Name)
	}
	return names
}

func auditGrant(r *http.Request, operation string, item grantItem, err error) {
	event := audit.GrantEvent{
		Username:    currentUsername(r),
		ClientIP:    server.ClientIP(r),
		Operation:   operation,
		GrantID:     item.ID,
		Group:       item.Group,
		Module:      item.Module,
		Permissions: item.Permissions,
		Success:     err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}

func handleCreateGrant(s *server.Server, grants store.GroupModulePermissionsStore, catalog store.CatalogStore) http.HandlerFunc {
	fp := formPage{title: i18n.MsgCreateTitle, submitLabel: i18n.MsgCreateSubmit, actionURL: grantCreateURL()}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			renderGrantForm(s, catalog, w, r, http.StatusOK, forms.New(false), fp)
			return
		}

		form, ok := bindGrantForm(s, catalog, w, r, false)
		if !ok {
			return
		}
		if !form.Valid() {
			respondInvalid(s, catalog, w, r, form, fp)
			return
		}

		cleaned := form.Cleaned()
		created, err := grants.Create(r.Context(), cleaned.Group.ID, cleaned.ModuleIDs(), cleaned.PermissionIDs())
		if errors.Is(err, store.ErrDuplicate) {
			auditGrant(r, audit.GrantCreate, grantItem{
				Group:       cleaned.Group.Name,
				Module:      moduleNames(cleaned.Modules),
				Permissions: permissionNames(cleaned.Permissions),
			}, err)
			form.AddError(forms.NonFieldErrors, s.Printer(r).Sprintf(forms.MsgDuplicateGrant, cleaned.Group.Name, moduleNames(cleaned.Modules)))
			respondInvalid(s, catalog, w, r, form, fp)
			return
		}
		if err != nil {
			s.RenderInternalError(w, r, err)
			return
		}

		printer := s.Printer(r)
		items := make([]grantItem, 0, len(created))
		flashes := make([]string, 0, len(created))
		for i, grant := range created {
			grant.Group = *cleaned.Group
			grant.Module = cleaned.Modules[i]
			grant.Permissions = cleaned.Permissions
			item := newGrantItem(grant)
			items = append(items, item)
			flashes = append(flashes, printer.Sprintf(i18n.MsgGrantCreated, item.Group, item.Module))

			auditGrant(r, audit.GrantCreate, item, nil)
			s.Metrics.RecordGrantMutation(audit.GrantCreate)
		}

		if server.WantsJSON(r) {
			respondWithJSON(w, http.StatusCreated, map[string]interface{}{"items": items})
			return
		}
		addFlash(s, w, r, flashes...)
		http.Redirect(w, r, grantListURL(), http.StatusSeeOther)
	}
}

// fetchGrant loads the {id} grant. It reports false when it already wrote a response.
func fetchGrant(s *server.Server, grants store.GroupModulePermissionsStore, w http.ResponseWriter, r *http.Request) (*model.GroupModulePermission, bool) {
	id, ok := idVar(r)
	if !ok {
		s.RenderError(w, r, http.StatusNotFound, i18n.MsgNotFound)
		return nil, false
	}
	grant, err := grants.Fetch(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.RenderError(w, r, http.StatusNotFound, i18n.MsgNotFound)
		return nil, false
	}
	if err != nil {
		s.RenderInternalError(w, r, err)
		return nil, false
	}
	return grant, true
}

func handleUpdateGrant(s *server.Server, grants store.GroupModulePermissionsStore, catalog store.CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grant, ok := fetchGrant(s, grants, w, r)
		if !ok {
			return
		}
		fp := formPage{title: i18n.MsgUpdateTitle, submitLabel: i18n.MsgUpdateSubmit, actionURL: grantUpdateURL(grant.ID)}

		if r.Method == http.MethodGet {
			renderGrantForm(s, catalog, w, r, http.StatusOK, forms.FromGrant(grant), fp)
			return
		}

		form, ok := bindGrantForm(s, catalog, w, r, true)
		if !ok {
			return
		}
		if !form.Valid() {
			respondInvalid(s, catalog, w, r, form, fp)
			return
		}

		cleaned := form.Cleaned()
		module := cleaned.Modules[0]
		updated, err := grants.Update(r.Context(), grant.ID, cleaned.Group.ID, module.ID, cleaned.PermissionIDs())
		switch {
		case errors.Is(err, store.ErrDuplicate):
			auditGrant(r, audit.GrantUpdate, grantItem{
				ID:          grant.ID,
				Group:       cleaned.Group.Name,
				Module:      module.Name,
				Permissions: permissionNames(cleaned.Permissions),
			}, err)
			form.AddError(forms.NonFieldErrors, s.Printer(r).Sprintf(forms.MsgDuplicateGrant, cleaned.Group.Name, module.Name))
			respondInvalid(s, catalog, w, r, form, fp)
			return
		case errors.Is(err, store.ErrNotFound):
			s.RenderError(w, r, http.StatusNotFound, i18n.MsgNotFound)
			return
		case err != nil:
			s.RenderInternalError(w, r, err)
			return
		}

		item := newGrantItem(*updated)
		auditGrant(r, audit.GrantUpdate, item, nil)
		s.Metrics.RecordGrantMutation(audit.GrantUpdate)

		if server.WantsJSON(r) {
			respondWithJSON(w, http.StatusOK, item)
			return
		}
		addFlash(s, w, r, s.Printer(r).Sprintf(i18n.MsgGrantUpdated, item.Group, item.Module))
		http.Redirect(w, r, grantListURL(), http.StatusSeeOther)
	}
}

type deleteContext struct {
	server.Page
	Grant       grantItem `json:"grant"`
	Description string    `json:"description"`
	SubmitLabel string    `json:"submit_label"`
	ActionURL   string    `json:"action_url"`
	BackURL     string    `json:"back_url"`
}

func handleDeleteGrant(s *server.Server, grants store.GroupModulePermissionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grant, ok := fetchGrant(s, grants, w, r)
		if !ok {
			return
		}
		// captured before the row goes away
		item := newGrantItem(*grant)

		if r.Method == http.MethodGet {
			page := s.NewPage(w, r, i18n.MsgDeleteTitle)
			s.Respond(w, r, http.StatusOK, server.PageGrantDelete, deleteContext{
				Page:        page,
				Grant:       item,
				Description: page.Tf(i18n.MsgDeleteDescription, item.Group, item.Module),
				SubmitLabel: page.T(i18n.MsgDeleteSubmit),
				ActionURL:   grantDeleteURL(grant.ID),
				BackURL:     grantListURL(),
			})
			return
		}

		err := grants.Delete(r.Context(), grant.ID)
		if errors.Is(err, store.ErrNotFound) {
			s.RenderError(w, r, http.StatusNotFound, i18n.MsgNotFound)
			return
		}
		if err != nil {
			auditGrant(r, audit.GrantDelete, item, err)
			s.RenderInternalError(w, r, err)
			return
		}

		auditGrant(r, audit.GrantDelete, item, nil)
		s.Metrics.RecordGrantMutation(audit.GrantDelete)

		if server.WantsJSON(r) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		addFlash(s, w, r, s.Printer(r).Sprintf(i18n.MsgGrantDeleted, item.Group, item.Module))
		http.Redirect(w, r, grantListURL(), http.StatusSeeOther)
	}
}
