// Package cli provides the interactive gophauth command-line client.
//
// App wires configuration, the gRPC-backed AuthService and a small REPL:
// register, login, whoami, logout, help and exit. Passwords are read without
// echo and wiped after use. A background watcher pings the server and shows
// online/offline in the prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
