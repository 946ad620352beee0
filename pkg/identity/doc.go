// Package identity carries the authenticated user through a request context.
//
// The identity middleware resolves a session cookie or bearer token into an
// Identity and stores it with Set; handlers and the permission check read it
// back with Get.
//
//	id := identity.New(user.ID, user.Username, user.IsSuperuser).
//	    WithAuthenticator("password").
//	    WithRemoteIP(clientIP)
//	ctx = identity.Set(ctx, id)
//
//	id, ok := identity.Get(ctx)
package identity
