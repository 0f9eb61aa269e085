// Package wizapi implements the WizNote sync API commands.
//
// Server builds command URLs with the fixed query parameters every command
// carries. AccountClient issues the stateless account server commands
// (login, logout, keep-alive, token, user info, value versions) and
// KnowledgeBaseClient issues content server commands for one knowledge
// base. Session state is held by the caller; every token-bearing call takes
// the token explicitly.
package wizapi
