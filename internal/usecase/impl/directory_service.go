// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/TimLeitch/ms-contact-sync/config"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/service"
	"github.com/TimLeitch/ms-contact-sync/internal/usecase"
)

// workContactsFolder is the well-known folder whose contact count is
// surfaced on the user detail view.
const workContactsFolder = "Work Contacts"

// recentContactsLimit caps the number of mailbox contacts shown per user.
const recentContactsLimit = 5

// directoryService implements the DirectoryUsecase interface.
type directoryService struct {
	tokens   service.TokenSource
	graph    service.GraphGateway
	pageSize int
	logger   *slog.Logger
}

// NewDirectoryService is the constructor for directoryService.
func NewDirectoryService(
	cfg *config.Config,
	tokens service.TokenSource,
	graph service.GraphGateway,
	logger *slog.Logger,
) usecase.DirectoryUsecase {
	return &directoryService{
		tokens:   tokens,
		graph:    graph,
		pageSize: cfg.Graph.PageSize,
		logger:   logger,
	}
}

// ListUsers fetches every user in the directory, following pagination
// until the collection is exhausted.
func (srv *directoryService) ListUsers(ctx context.Context, sessionID string) ([]*entity.DirectoryUser, error) {
	token, err := srv.tokens.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"$select": {"displayName,userPrincipalName,mobilePhone,businessPhones,id"},
		"$top":    {strconv.Itoa(srv.pageSize)},
	}

	raws, err := srv.graph.GetAll(ctx, token, "/users", query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list directory users")
	}

	users := make([]*entity.DirectoryUser, 0, len(raws))
	for _, raw := range raws {
		var user entity.DirectoryUser
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, errors.Wrap(err, "failed to decode directory user")
		}
		users = append(users, &user)
	}

	srv.logger.Debug("fetched directory users", slog.Int("count", len(users)))

	return users, nil
}

// ListGroups fetches every group and resolves each group's member count
// through a single batched $count fan-out. A failed batch chunk degrades
// only the counts it covers; the group listing itself always survives.
func (srv *directoryService) ListGroups(ctx context.Context, sessionID string) ([]*entity.DirectoryGroup, error) {
	token, err := srv.tokens.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	query := url.Values{"$select": {"displayName,id"}}

	raws, err := srv.graph.GetAll(ctx, token, "/groups", query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list directory groups")
	}

	groups := make([]*entity.DirectoryGroup, 0, len(raws))
	for _, raw := range raws {
		var group entity.DirectoryGroup
		if err := json.Unmarshal(raw, &group); err != nil {
			return nil, errors.Wrap(err, "failed to decode directory group")
		}
		groups = append(groups, &group)
	}

	if len(groups) == 0 {
		return groups, nil
	}

	// One sub-request per group, correlated by a synthetic ID so results
	// can be matched regardless of response ordering.
	requests := make([]service.BatchRequest, 0, len(groups))
	for i, group := range groups {
		requests = append(requests, service.BatchRequest{
			ID:      fmt.Sprintf("request-%d", i),
			Method:  "GET",
			URL:     fmt.Sprintf("/groups/%s/members/$count", group.ID),
			Headers: map[string]string{"ConsistencyLevel": "eventual"},
		})
	}

	results, err := srv.graph.Batch(ctx, token, requests)
	if err != nil {
		return nil, errors.Wrap(err, "failed to batch member counts")
	}

	for i, group := range groups {
		result, ok := results[fmt.Sprintf("request-%d", i)]
		switch {
		case !ok:
			continue
		case result.Timeout:
			group.MemberCount = "Timeout"
		case result.Failed:
			group.MemberCount = "Error"
		case result.Status == 200:
			group.MemberCount = strings.TrimSpace(strings.Trim(string(result.Body), `"`))
		}
	}

	return groups, nil
}

// GroupMembers fetches a group's metadata together with its member list.
func (srv *directoryService) GroupMembers(ctx context.Context, sessionID string, groupID string) (*usecase.GroupMembersOutput, error) {
	token, err := srv.tokens.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	groupRaw, err := srv.graph.Get(ctx, token, "/groups/"+groupID, url.Values{
		"$select": {"displayName,id"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch group")
	}

	var group entity.DirectoryGroup
	if err := json.Unmarshal(groupRaw, &group); err != nil {
		return nil, errors.Wrap(err, "failed to decode group")
	}

	memberRaws, err := srv.graph.GetAll(ctx, token, "/groups/"+groupID+"/members", url.Values{
		"$select": {"id,displayName,userPrincipalName,mobilePhone,businessPhones"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch group members")
	}

	members := make([]*entity.GroupMember, 0, len(memberRaws))
	for _, raw := range memberRaws {
		var member entity.GroupMember
		if err := json.Unmarshal(raw, &member); err != nil {
			return nil, errors.Wrap(err, "failed to decode group member")
		}
		members = append(members, &member)
	}

	srv.logger.Info("fetched group members", slog.String("groupID", groupID), slog.Int("count", len(members)))

	return &usecase.GroupMembersOutput{Group: &group, Members: members}, nil
}

// UserContacts fetches a directory user's profile, contact folders and most
// recent mailbox contacts concurrently, then annotates each contact with
// the display name of its parent folder. When a "Work Contacts" folder
// exists its total contact count is resolved with an extra $count call.
func (srv *directoryService) UserContacts(ctx context.Context, sessionID string, userID string) (*usecase.UserContactsOutput, error) {
	token, err := srv.tokens.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var (
		user     entity.DirectoryUser
		folders  []*entity.ContactFolder
		contacts []*entity.DirectoryContact
	)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		raw, err := srv.graph.Get(gctx, token, "/users/"+userID, url.Values{
			"$select": {"id,displayName,mail,userPrincipalName,jobTitle,department,officeLocation"},
		})
		if err != nil {
			return errors.Wrap(err, "failed to fetch user")
		}

		return errors.Wrap(json.Unmarshal(raw, &user), "failed to decode user")
	})

	group.Go(func() error {
		raws, err := srv.graph.GetAll(gctx, token, "/users/"+userID+"/contactFolders", nil)
		if err != nil {
			return errors.Wrap(err, "failed to fetch contact folders")
		}

		folders = make([]*entity.ContactFolder, 0, len(raws))
		for _, raw := range raws {
			var folder entity.ContactFolder
			if err := json.Unmarshal(raw, &folder); err != nil {
				return errors.Wrap(err, "failed to decode contact folder")
			}
			folders = append(folders, &folder)
		}

		return nil
	})

	group.Go(func() error {
		raws, err := srv.graph.GetAll(gctx, token, "/users/"+userID+"/contacts", url.Values{
			"$select":  {"displayName,emailAddresses,parentFolderId"},
			"$orderby": {"lastModifiedDateTime desc"},
			"$top":     {strconv.Itoa(recentContactsLimit)},
		})
		if err != nil {
			return errors.Wrap(err, "failed to fetch contacts")
		}

		contacts = make([]*entity.DirectoryContact, 0, len(raws))
		for _, raw := range raws {
			var contact entity.DirectoryContact
			if err := json.Unmarshal(raw, &contact); err != nil {
				return errors.Wrap(err, "failed to decode contact")
			}
			contacts = append(contacts, &contact)
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	folderNames := make(map[string]string, len(folders))
	for _, folder := range folders {
		folderNames[folder.ID] = folder.DisplayName
	}
	for _, contact := range contacts {
		if name, ok := folderNames[contact.ParentFolderID]; ok {
			contact.FolderName = name
		} else {
			contact.FolderName = "Unknown Folder"
		}
	}

	output := &usecase.UserContactsOutput{
		User:     &user,
		Folders:  folders,
		Contacts: contacts,
	}

	for _, folder := range folders {
		if folder.DisplayName != workContactsFolder {
			continue
		}

		count, err := srv.workFolderCount(ctx, token, userID, folder.ID)
		if err != nil {
			srv.logger.Error("failed to count work contacts",
				slog.String("userID", userID), slog.Any("error", err))

			break
		}
		folder.TotalContactCount = count
		output.WorkContactsCount = count

		break
	}

	return output, nil
}

func (srv *directoryService) workFolderCount(ctx context.Context, token, userID, folderID string) (int, error) {
	raw, err := srv.graph.Get(ctx, token, fmt.Sprintf("/users/%s/contactFolders/%s/contacts/$count", userID, folderID), nil)
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(strings.TrimSpace(strings.Trim(string(raw), `"`)))
	if err != nil {
		return 0, errors.Wrap(domainerrors.ErrInternalError, "unexpected count payload")
	}

	return count, nil
}
