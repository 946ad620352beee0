package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

var admin = &model.User{ID: 1, Username: "admin", IsActive: true}

func billingGrant() *model.GroupModulePermission {
	return &model.GroupModulePermission{
		ID:          5,
		GroupID:     groupOps.ID,
		Group:       groupOps,
		ModuleID:    moduleBilling.ID,
		Module:      moduleBilling,
		Permissions: []model.Permission{permView, permAdd},
	}
}

// newAdminServer returns a server where admin holds every permission
func newAdminServer(t *testing.T) (*testServer, *http.Cookie) {
	ts := newTestServer(t)
	cookie := ts.loginAs(t, admin)
	ts.authz.On("UserHasPermission", mock.Anything, admin.ID, mock.Anything).Return(true, nil)
	return ts, cookie
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestListGrants_Authorization(t *testing.T) {
	t.Run("anonymous users are sent to login", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(httptest.NewRequest("GET", "/security/group-module-permissions/", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?next=%2Fsecurity%2Fgroup-module-permissions%2F", w.Header().Get("Location"))
	})

	t.Run("users without view permission are forbidden", func(t *testing.T) {
		ts := newTestServer(t)
		bob := &model.User{ID: 2, Username: "bob", IsActive: true}
		cookie := ts.loginAs(t, bob)
		ts.authz.On("UserHasPermission", mock.Anything, bob.ID, "view_groupmodulepermission").Return(false, nil)

		w := ts.do(httptest.NewRequest("GET", "/security/group-module-permissions/", nil), cookie)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "You do not have permission to access this page.")
		ts.grants.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestListGrants(t *testing.T) {
	t.Run("filters and paginates", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("List", mock.Anything, store.GrantFilter{Query: "ops", Limit: 2, Offset: 0}).
			Return([]model.GroupModulePermission{*billingGrant()}, int64(3), nil)

		req := httptest.NewRequest("GET", "/security/group-module-permissions/?q=+ops+&format=json", nil)
		w := ts.do(req, cookie)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "ops", body["q"])
		assert.Equal(t, "/security/group-module-permissions/create", body["create_url"])

		items := body["items"].([]interface{})
		require.Len(t, items, 1)
		item := items[0].(map[string]interface{})
		assert.Equal(t, "Ops", item["group"])
		assert.Equal(t, "Billing", item["module"])
		assert.Equal(t, []interface{}{"Can view invoice", "Can add invoice"}, item["permissions"])
		assert.Equal(t, "/security/group-module-permissions/5/update", item["update_url"])

		pagination := body["pagination"].(map[string]interface{})
		assert.Equal(t, float64(2), pagination["num_pages"])
		assert.Equal(t, true, pagination["has_next"])
		assert.Equal(t, "/security/group-module-permissions/?page=2&q=ops", pagination["next_url"])
	})

	t.Run("second page", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("List", mock.Anything, store.GrantFilter{Limit: 2, Offset: 2}).
			Return([]model.GroupModulePermission{*billingGrant()}, int64(3), nil)

		req := httptest.NewRequest("GET", "/security/group-module-permissions/?page=2", nil)
		req.Header.Set("Accept", "application/json")
		w := ts.do(req, cookie)

		require.Equal(t, http.StatusOK, w.Code)
		pagination := decode(t, w)["pagination"].(map[string]interface{})
		assert.Equal(t, true, pagination["has_previous"])
		assert.Equal(t, false, pagination["has_next"])
	})

	t.Run("page out of range", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("List", mock.Anything, store.GrantFilter{Limit: 2, Offset: 8}).
			Return([]model.GroupModulePermission{}, int64(3), nil)

		w := ts.do(httptest.NewRequest("GET", "/security/group-module-permissions/?page=5", nil), cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("renders HTML in the requested language", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("List", mock.Anything, store.GrantFilter{Limit: 2}).
			Return([]model.GroupModulePermission{*billingGrant()}, int64(1), nil)

		req := httptest.NewRequest("GET", "/security/group-module-permissions/", nil)
		req.Header.Set("Accept-Language", "es-ES,es;q=0.9")
		w := ts.do(req, cookie)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Permisos por grupo y módulo")
		assert.Contains(t, w.Body.String(), "<td>Billing</td>")
		assert.Contains(t, w.Body.String(), `href="/security/group-module-permissions/5/delete"`)
	})

	t.Run("empty list", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("List", mock.Anything, store.GrantFilter{Limit: 2}).
			Return([]model.GroupModulePermission{}, int64(0), nil)

		w := ts.do(httptest.NewRequest("GET", "/security/group-module-permissions/", nil), cookie)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No permissions have been assigned yet.")
	})
}

func TestCreateGrant_Get(t *testing.T) {
	ts, cookie := newAdminServer(t)

	req := httptest.NewRequest("GET", "/security/group-module-permissions/create?format=json", nil)
	w := ts.do(req, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []interface{}{}, body["selected_permissions"])
	assert.Equal(t, "Save", body["submit_label"])
	assert.Equal(t, "/security/group-module-permissions/", body["back_url"])
	assert.JSONEq(t,
		`{"100":[{"id":10,"name":"Can view invoice"},{"id":11,"name":"Can add invoice"}],"101":[{"id":12,"name":"Can export report"}]}`,
		body["module_permissions_json"].(string),
	)

	html := ts.do(httptest.NewRequest("GET", "/security/group-module-permissions/create", nil), cookie)
	require.Equal(t, http.StatusOK, html.Code)
	assert.Contains(t, html.Body.String(), "<strong>payments</strong>")
	assert.Contains(t, html.Body.String(), `name="modules" value="100"`)
}

func TestCreateGrant_Post(t *testing.T) {
	t.Run("creates one grant per module and flashes", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Create", mock.Anything, groupOps.ID, []uint{100, 101}, []uint{11, 10}).
			Return([]model.GroupModulePermission{
				{ID: 20, GroupID: groupOps.ID, ModuleID: 100},
				{ID: 21, GroupID: groupOps.ID, ModuleID: 101},
			}, nil)
		ts.grants.On("List", mock.Anything, store.GrantFilter{Limit: 2}).
			Return([]model.GroupModulePermission{}, int64(0), nil)

		w := ts.do(formRequest("POST", "/security/group-module-permissions/create", url.Values{
			"group":       {"1"},
			"modules":     {"100", "101", "100"},
			"permissions": {"11", "10"},
			"menus":       {"7"},
		}), cookie)

		require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
		assert.Equal(t, "/security/group-module-permissions/", w.Header().Get("Location"))

		list := ts.follow(w, "/security/group-module-permissions/", cookie)
		require.Equal(t, http.StatusOK, list.Code)
		assert.Contains(t, list.Body.String(), "Permissions assigned to group Ops on module Billing.")
		assert.Contains(t, list.Body.String(), "Permissions assigned to group Ops on module Reports.")
		ts.grants.AssertExpectations(t)
	})

	t.Run("missing group is a record error", func(t *testing.T) {
		ts, cookie := newAdminServer(t)

		w := ts.do(formRequest("POST", "/security/group-module-permissions/create", url.Values{
			"modules":     {"100"},
			"permissions": {"10"},
		}), cookie)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "group: This field is required.")
		ts.grants.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid choices are field errors", func(t *testing.T) {
		ts, cookie := newAdminServer(t)

		w := ts.do(jsonRequest("POST", "/security/group-module-permissions/create",
			`{"group": 1, "modules": [999], "permissions": []}`), cookie)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		errs := decode(t, w)["errors"].(map[string]interface{})
		assert.Equal(t, []interface{}{"Select a valid choice. 999 is not one of the available choices."}, errs["modules"])
		assert.Equal(t, []interface{}{"This field is required."}, errs["permissions"])
	})

	t.Run("duplicate grant", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Create", mock.Anything, groupOps.ID, []uint{100}, []uint{10}).
			Return(nil, fmt.Errorf("insert grant: %w", store.ErrDuplicate))

		w := ts.do(jsonRequest("POST", "/security/group-module-permissions/create",
			`{"group": "1", "modules": ["100"], "permissions": ["10"]}`), cookie)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		errs := decode(t, w)["errors"].(map[string]interface{})
		assert.Equal(t, []interface{}{"Permissions for group 'Ops' and module 'Billing' already exist."}, errs["__all__"])
	})

	t.Run("JSON clients get the created grants", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Create", mock.Anything, groupFinance.ID, []uint{101}, []uint{12}).
			Return([]model.GroupModulePermission{{ID: 30, GroupID: groupFinance.ID, ModuleID: 101}}, nil)

		w := ts.do(jsonRequest("POST", "/security/group-module-permissions/create",
			`{"group": 2, "modules": [101], "permissions": [12]}`), cookie)

		require.Equal(t, http.StatusCreated, w.Code)
		items := decode(t, w)["items"].([]interface{})
		require.Len(t, items, 1)
		item := items[0].(map[string]interface{})
		assert.Equal(t, float64(30), item["id"])
		assert.Equal(t, "Finance", item["group"])
		assert.Equal(t, "Reports", item["module"])
	})

	t.Run("requires add permission", func(t *testing.T) {
		ts := newTestServer(t)
		bob := &model.User{ID: 2, Username: "bob", IsActive: true}
		cookie := ts.loginAs(t, bob)
		ts.authz.On("UserHasPermission", mock.Anything, bob.ID, "add_groupmodulepermission").Return(false, nil)

		w := ts.do(jsonRequest("POST", "/security/group-module-permissions/create", `{}`), cookie)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUpdateGrant(t *testing.T) {
	t.Run("unknown grant", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Fetch", mock.Anything, uint(404)).Return(nil, store.ErrNotFound)

		w := ts.do(httptest.NewRequest("GET", "/security/group-module-permissions/404/update", nil), cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("prefilled form", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Fetch", mock.Anything, uint(5)).Return(billingGrant(), nil)

		w := ts.do(httptest.NewRequest("GET", "/security/group-module-permissions/5/update?format=json", nil), cookie)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, []interface{}{float64(10), float64(11)}, body["selected_permissions"])
		assert.Equal(t, "Update Permissions by Group and Module", body["submit_label"])
		assert.Equal(t, "/security/group-module-permissions/", body["back_url"])
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "1", data["group"])
		assert.Equal(t, []interface{}{"100"}, data["modules"])
	})

	t.Run("exactly one module", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Fetch", mock.Anything, uint(5)).Return(billingGrant(), nil)

		w := ts.do(jsonRequest("POST", "/security/group-module-permissions/5/update",
			`{"group": 1, "modules": [100, 101], "permissions": [10]}`), cookie)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		errs := decode(t, w)["errors"].(map[string]interface{})
		assert.Equal(t, []interface{}{"Select exactly one module when editing a grant."}, errs["modules"])
	})

	t.Run("replaces the grant and flashes", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Fetch", mock.Anything, uint(5)).Return(billingGrant(), nil)
		ts.grants.On("Update", mock.Anything, uint(5), groupFinance.ID, moduleReports.ID, []uint{12}).
			Return(&model.GroupModulePermission{
				ID:          5,
				Group:       groupFinance,
				Module:      moduleReports,
				Permissions: []model.Permission{permExport},
			}, nil)
		ts.grants.On("List", mock.Anything, store.GrantFilter{Limit: 2}).
			Return([]model.GroupModulePermission{}, int64(0), nil)

		w := ts.do(formRequest("POST", "/security/group-module-permissions/5/update", url.Values{
			"group":       {"2"},
			"modules":     {"101"},
			"permissions": {"12"},
		}), cookie)

		require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
		list := ts.follow(w, "/security/group-module-permissions/", cookie)
		assert.Contains(t, list.Body.String(), "Permissions for group &#39;Finance&#39; and module &#39;Reports&#39; updated successfully.")
	})

	t.Run("moving onto an existing pair", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Fetch", mock.Anything, uint(5)).Return(billingGrant(), nil)
		ts.grants.On("Update", mock.Anything, uint(5), groupOps.ID, moduleReports.ID, []uint{12}).
			Return(nil, store.ErrDuplicate)

		w := ts.do(jsonRequest("POST", "/security/group-module-permissions/5/update",
			`{"group": 1, "modules": [101], "permissions": [12]}`), cookie)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		errs := decode(t, w)["errors"].(map[string]interface{})
		assert.Equal(t, []interface{}{"Permissions for group 'Ops' and module 'Reports' already exist."}, errs["__all__"])
	})
}

func TestDeleteGrant(t *testing.T) {
	t.Run("confirmation", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Fetch", mock.Anything, uint(5)).Return(billingGrant(), nil)

		w := ts.do(httptest.NewRequest("GET", "/security/group-module-permissions/5/delete?format=json", nil), cookie)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Delete the permissions for group 'Ops' and module 'Billing'?", body["description"])
		assert.Equal(t, "Delete Permissions by Group and Module", body["submit_label"])
		ts.grants.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes and flashes the captured names", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Fetch", mock.Anything, uint(5)).Return(billingGrant(), nil)
		ts.grants.On("Delete", mock.Anything, uint(5)).Return(nil)
		ts.grants.On("List", mock.Anything, store.GrantFilter{Limit: 2}).
			Return([]model.GroupModulePermission{}, int64(0), nil)

		w := ts.do(formRequest("POST", "/security/group-module-permissions/5/delete", nil), cookie)

		require.Equal(t, http.StatusSeeOther, w.Code)
		list := ts.follow(w, "/security/group-module-permissions/", cookie)
		assert.Contains(t, list.Body.String(), "Permissions for group &#39;Ops&#39; and module &#39;Billing&#39; deleted successfully.")
		ts.grants.AssertExpectations(t)
	})

	t.Run("flash save failure is logged", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		core, logs := observer.New(zapcore.WarnLevel)
		ts.Logger = zap.New(core)

		// the flash no longer fits in the session cookie
		grant := billingGrant()
		grant.Group.Name = strings.Repeat("g", 5000)
		ts.grants.On("Fetch", mock.Anything, uint(5)).Return(grant, nil)
		ts.grants.On("Delete", mock.Anything, uint(5)).Return(nil)

		w := ts.do(formRequest("POST", "/security/group-module-permissions/5/delete", nil), cookie)

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/security/group-module-permissions/", w.Header().Get("Location"))
		assert.Equal(t, 1, logs.FilterMessage("failed to save flash messages").Len())
		ts.grants.AssertExpectations(t)
	})

	t.Run("JSON clients get 204", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Fetch", mock.Anything, uint(5)).Return(billingGrant(), nil)
		ts.grants.On("Delete", mock.Anything, uint(5)).Return(nil)

		w := ts.do(jsonRequest("POST", "/security/group-module-permissions/5/delete", `{}`), cookie)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("deleted concurrently", func(t *testing.T) {
		ts, cookie := newAdminServer(t)
		ts.grants.On("Fetch", mock.Anything, uint(5)).Return(billingGrant(), nil)
		ts.grants.On("Delete", mock.Anything, uint(5)).Return(store.ErrNotFound)

		w := ts.do(formRequest("POST", "/security/group-module-permissions/5/delete", nil), cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleDeleteGrant_Direct(t *testing.T) {
	ts := newTestServer(t)
	ts.grants.On("Fetch", mock.Anything, uint(5)).Return(billingGrant(), nil)

	handler := handleDeleteGrant(ts.Server, ts.grants)

	req := requestWithIdentity("GET", "/security/group-module-permissions/5/delete", nil, "admin")
	req = withMuxVars(req, map[string]string{"id": "5"})
	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Delete the permissions for group &#39;Ops&#39; and module &#39;Billing&#39;?")
}
