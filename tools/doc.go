// Package tools turns typed Go functions into OpenAI function tools.
//
// A Function derives the JSON schema of its argument struct, describes itself
// as a chat completion tool or an assistant function tool, parses the
// (possibly malformed) arguments produced by the model, runs the handler
// and renders the result as tool content.
// The Registry keeps the named tools of a process, and the catalog of
// providers allows to load them by name from configuration.
package tools
