package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/rbac-console/pkg/identity"
	"github.com/doodlesbykumbi/rbac-console/pkg/server"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

// addFlash queues msgs for the next page. The redirect goes ahead without them
// when the session cannot be saved.
func addFlash(s *server.Server, w http.ResponseWriter, r *http.Request, msgs ...string) {
	if err := s.Sessions.AddFlash(w, r, msgs...); err != nil {
		s.Logger.Warn("failed to save flash messages", zap.Int("count", len(msgs)), zap.Error(err))
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	server.WriteJSON(w, code, payload)
}

// idVar parses the {id} route variable
func idVar(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pageNumber parses the page query parameter; anything invalid is page 1
func pageNumber(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func currentUsername(r *http.Request) string {
	if id, ok := identity.Get(r.Context()); ok {
		return id.Username
	}
	return ""
}
