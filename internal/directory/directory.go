// Package directory specifies the User Directory collaborator: user
// profile lookup and active-table bookkeeping live outside this module's
// scope (authentication, avatars, social features are explicit
// non-goals), but the table/tournament engines still need a narrow,
// stable contract to reach them through.
package directory

import "context"

// PlayerID is an opaque identifier; components never hold a direct
// reference to another component's internal player record across a
// boundary, only this id.
type PlayerID string

// User is the subset of profile data the core engine ever needs to read.
type User struct {
	ID           PlayerID
	WalletID     string
	Balance      int64
	Referrer     *PlayerID
	IsVerified   bool
	Username     string
}

// Directory is the external user-profile collaborator.
type Directory interface {
	GetUser(ctx context.Context, id PlayerID) (User, error)
	AddActiveTable(ctx context.Context, id PlayerID, tableID string) error
	RemoveActiveTable(ctx context.Context, id PlayerID, tableID string) error
}
