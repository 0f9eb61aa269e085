// Package command provides the wizcli commands built on urfave/cli/v2.
//
// Every command receives a *Runtime holding the configuration, the API
// clients and the login state. One Runtime lives for the whole process,
// so commands typed into the shell share a single session:
//
//   - auth.go: login, logout, keep, token
//   - account.go: user, versions
//   - document.go: document download
//   - session.go: session show, save and forget
//   - config.go, system.go: config, stats, version
//   - shell.go: the interactive shell
package command
