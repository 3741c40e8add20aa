// Package chatlog specifies the narrow chat-history collaborator. Chat
// moderation and UI are explicit non-goals; this interface only exists so
// the table engine has somewhere to hand off a chat message without
// owning its storage.
package chatlog

import "context"

// Log appends chat messages for a table. Implementations (persistence,
// moderation) live outside this module.
type Log interface {
	Append(ctx context.Context, tableID, playerID, message string) error
}
