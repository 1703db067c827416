package entity

// Directory objects are fetched from the Microsoft Graph API on demand and
// held only for the duration of a single request/response cycle. They are
// never persisted locally.

// DirectoryUser is a user object from the organization's directory.
type DirectoryUser struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"displayName"`
	UserPrincipalName string   `json:"userPrincipalName"`
	GivenName         string   `json:"givenName"`
	Surname           string   `json:"surname"`
	Mail              string   `json:"mail"`
	JobTitle          string   `json:"jobTitle"`
	CompanyName       string   `json:"companyName"`
	Department        string   `json:"department"`
	MobilePhone       string   `json:"mobilePhone"`
	BusinessPhones    []string `json:"businessPhones"`
	OfficeLocation    string   `json:"officeLocation"`
}

// DirectoryGroup is a group object from the directory. MemberCount is
// populated by a batched $count fan-out and holds either a decimal count or
// a sentinel ("Error", "Timeout") when the owning batch chunk failed.
type DirectoryGroup struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	MemberCount string `json:"memberCount,omitempty"`
}

// GroupMember is a member entry of a directory group.
type GroupMember struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"displayName"`
	UserPrincipalName string   `json:"userPrincipalName"`
	MobilePhone       string   `json:"mobilePhone"`
	BusinessPhones    []string `json:"businessPhones"`
}

// ContactFolder is a contact folder belonging to a directory user.
type ContactFolder struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	TotalContactCount int    `json:"totalContactCount,omitempty"`
}

// DirectoryContact is a contact stored in a directory user's mailbox.
type DirectoryContact struct {
	ID             string           `json:"id"`
	DisplayName    string           `json:"displayName"`
	EmailAddresses []DirectoryEmail `json:"emailAddresses"`
	ParentFolderID string           `json:"parentFolderId"`
	FolderName     string           `json:"folderName,omitempty"`
}

// DirectoryEmail is a name/address pair on a directory contact.
type DirectoryEmail struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}
