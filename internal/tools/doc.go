// Package tools exposes a task store as Model Context Protocol tools.
//
// A [Session] owns the store, a persister and an optional journal. Tool
// calls are serialised by the session, so the store underneath never sees
// concurrent access. When a state file is configured, every successful
// mutation is saved to it before the tool returns.
package tools
