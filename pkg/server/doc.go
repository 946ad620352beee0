// Package server provides the HTTP server of the permission console.
//
// # Server Setup
//
//	srv, err := server.NewServer(cfg, db, logger, metrics.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Router: HTTP request router
//   - Sessions: signed cookie sessions carrying the user and flash messages
//   - Renderer: the embedded HTML templates
//   - Localizer: per-request message translation
//   - Authenticators: the password and jwt authenticators
//   - the stores the endpoints read and write
//
// Pages negotiate their representation: the same context is rendered as
// HTML or returned as JSON (Accept: application/json or ?format=json).
//
// # Endpoints
//
// Endpoints are registered via the endpoints subpackage:
//
//   - /security/group-module-permissions/ - grant list
//   - /security/group-module-permissions/create - grant creation
//   - /security/group-module-permissions/{id}/update - grant edition
//   - /security/group-module-permissions/{id}/delete - grant removal
//   - /login, /logout - session authentication
//   - /status, /metrics - health and Prometheus metrics
package server
