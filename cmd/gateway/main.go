// Command gateway runs the access control lab gateway.
//
//	@title			Access Control Gateway API
//	@version		1.0
//	@description	Authenticated resource gateway: owner-scoped orders, session-backed account routes and path-constrained file reads.
//	@host			localhost:4000
//	@BasePath		/
//
//	@securityDefinitions.apikey	UserIDHeader
//	@in							header
//	@name						X-User-Id
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						sid
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"os"

	"github.com/appsec-lab/gateway/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
