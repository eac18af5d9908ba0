// Package driving defines the interfaces that front ends call INTO the core.
// The HTTP server, MCP server, CLI and chat UI depend only on these ports.
package driving
