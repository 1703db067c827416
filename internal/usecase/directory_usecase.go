// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
)

// DirectoryUsecase defines the interface for directory browsing operations
// backed by Microsoft Graph.
type DirectoryUsecase interface {
	ListUsers(ctx context.Context, sessionID string) ([]*entity.DirectoryUser, error)
	ListGroups(ctx context.Context, sessionID string) ([]*entity.DirectoryGroup, error)
	GroupMembers(ctx context.Context, sessionID string, groupID string) (*GroupMembersOutput, error)
	UserContacts(ctx context.Context, sessionID string, userID string) (*UserContactsOutput, error)
}

// --- Output DTOs ---

// GroupMembersOutput bundles a group with its resolved member list.
type GroupMembersOutput struct {
	Group   *entity.DirectoryGroup
	Members []*entity.GroupMember
}

// UserContactsOutput bundles a directory user with their personal contact
// folders and contacts.
type UserContactsOutput struct {
	User              *entity.DirectoryUser
	Folders           []*entity.ContactFolder
	Contacts          []*entity.DirectoryContact
	WorkContactsCount int
}
