//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/rbac-console/pkg/seed"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	client       *http.Client
	response     *http.Response
	responseBody []byte
	bearerToken  string
}

// NewStepsContext creates a new steps context with an empty cookie jar
func NewStepsContext(tc *TestContext) *StepsContext {
	jar, _ := cookiejar.New(nil)
	return &StepsContext{
		tc: tc,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	// Background steps
	sc.Step(`^the console is running$`, s.theConsoleIsRunning)
	sc.Step(`^the following seed is loaded:$`, s.theFollowingSeedIsLoaded)

	// Session steps
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogInAs)
	sc.Step(`^I log out$`, s.iLogOut)
	sc.Step(`^I open "([^"]*)"$`, s.iOpen)
	sc.Step(`^I request "([^"]*)" as JSON$`, s.iRequestAsJSON)

	// Grant steps
	sc.Step(`^I assign "([^"]*)" to group "([^"]*)" on module "([^"]*)"$`, s.iAssign)
	sc.Step(`^I change the grant of group "([^"]*)" on module "([^"]*)" to "([^"]*)"$`, s.iChangeTheGrant)
	sc.Step(`^I delete the grant of group "([^"]*)" on module "([^"]*)"$`, s.iDeleteTheGrant)
	sc.Step(`^group "([^"]*)" should have "([^"]*)" on module "([^"]*)"$`, s.groupShouldHaveOnModule)
	sc.Step(`^group "([^"]*)" should have no grant on module "([^"]*)"$`, s.groupShouldHaveNoGrantOnModule)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should redirect to "([^"]*)"$`, s.theResponseShouldRedirectTo)
	sc.Step(`^the response should contain "([^"]*)"$`, s.theResponseShouldContain)
	sc.Step(`^the JSON response should list (\d+) grants?$`, s.theJSONResponseShouldListGrants)
	sc.Step(`^the JSON response should have an error for "([^"]*)"$`, s.theJSONResponseShouldHaveAnErrorFor)

	s.registerJWTSteps(sc)
}

func (s *StepsContext) theConsoleIsRunning() error {
	return nil
}

func (s *StepsContext) theFollowingSeedIsLoaded(doc *godog.DocString) error {
	_, err := seed.NewLoader(seed.NewGormStore(s.tc.DB)).
		LoadFromReader(context.Background(), strings.NewReader(doc.Content))
	return err
}

// HTTP helpers

func (s *StepsContext) do(req *http.Request) error {
	req.Header.Set("Accept-Language", "en")
	if s.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.bearerToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return err
}

func (s *StepsContext) url(path string) string {
	return s.tc.Server.ServerURL + path
}

func (s *StepsContext) postJSON(path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, s.url(path), strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return s.do(req)
}

// Session steps

func (s *StepsContext) iLogInAs(username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequest(http.MethodPost, s.url("/login"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *StepsContext) iLogOut() error {
	req, err := http.NewRequest(http.MethodPost, s.url("/logout"), nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *StepsContext) iOpen(path string) error {
	req, err := http.NewRequest(http.MethodGet, s.url(path), nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *StepsContext) iRequestAsJSON(path string) error {
	req, err := http.NewRequest(http.MethodGet, s.url(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return s.do(req)
}

// Grant steps

func (s *StepsContext) lookup(table, column, key string) (uint, error) {
	var id uint
	row := s.tc.DB.Raw(fmt.Sprintf("SELECT id FROM %s WHERE %s = ?", table, column), key).Row()
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("%s %q not found: %w", table, key, err)
	}
	return id, nil
}

func (s *StepsContext) permissionIDs(codenames string) ([]uint, error) {
	var ids []uint
	for _, codename := range splitList(codenames) {
		id, err := s.lookup("permissions", "codename", codename)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *StepsContext) grantID(group, module string) (uint, error) {
	var id uint
	row := s.tc.DB.Raw(`
		SELECT gmp.id FROM group_module_permissions gmp
		JOIN groups g ON g.id = gmp.group_id
		JOIN modules m ON m.id = gmp.module_id
		WHERE g.name = ? AND m.name = ?`, group, module).Row()
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("no grant for group %q on module %q: %w", group, module, err)
	}
	return id, nil
}

func (s *StepsContext) grantBody(group, module, codenames string) (map[string]interface{}, error) {
	groupID, err := s.lookup("groups", "name", group)
	if err != nil {
		return nil, err
	}
	moduleID, err := s.lookup("modules", "name", module)
	if err != nil {
		return nil, err
	}
	permissions, err := s.permissionIDs(codenames)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"group":       groupID,
		"modules":     []uint{moduleID},
		"permissions": permissions,
	}, nil
}

func (s *StepsContext) iAssign(codenames, group, module string) error {
	body, err := s.grantBody(group, module, codenames)
	if err != nil {
		return err
	}
	return s.postJSON("/security/group-module-permissions/create", body)
}

func (s *StepsContext) iChangeTheGrant(group, module, codenames string) error {
	id, err := s.grantID(group, module)
	if err != nil {
		return err
	}
	body, err := s.grantBody(group, module, codenames)
	if err != nil {
		return err
	}
	return s.postJSON(fmt.Sprintf("/security/group-module-permissions/%d/update", id), body)
}

func (s *StepsContext) iDeleteTheGrant(group, module string) error {
	id, err := s.grantID(group, module)
	if err != nil {
		return err
	}
	return s.postJSON(fmt.Sprintf("/security/group-module-permissions/%d/delete", id), map[string]interface{}{})
}

func (s *StepsContext) groupShouldHaveOnModule(group, codenames, module string) error {
	id, err := s.grantID(group, module)
	if err != nil {
		return err
	}

	rows, err := s.tc.DB.Raw(`
		SELECT p.codename FROM group_module_permission_permissions gp
		JOIN permissions p ON p.id = gp.permission_id
		WHERE gp.group_module_permission_id = ?
		ORDER BY p.codename`, id).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		var codename string
		if err := rows.Scan(&codename); err != nil {
			return err
		}
		got = append(got, codename)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	want := splitList(codenames)
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("expected permissions %v, got %v", want, got)
	}
	return nil
}

func (s *StepsContext) groupShouldHaveNoGrantOnModule(group, module string) error {
	if _, err := s.grantID(group, module); err == nil {
		return fmt.Errorf("expected no grant for group %q on module %q", group, module)
	}
	return nil
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseShouldRedirectTo(location string) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if got := s.response.Header.Get("Location"); got != location {
		return fmt.Errorf("expected redirect to %q, got %q", location, got)
	}
	return nil
}

func (s *StepsContext) theResponseShouldContain(text string) error {
	if !strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected response to contain %q, got: %s", text, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theJSONResponseShouldListGrants(count int) error {
	var body struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(body.Items) != count {
		return fmt.Errorf("expected %d grants, got %d: %s", count, len(body.Items), string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theJSONResponseShouldHaveAnErrorFor(field string) error {
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(body.Errors[field]) == 0 {
		return fmt.Errorf("expected an error for %q, got %v", field, body.Errors)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
