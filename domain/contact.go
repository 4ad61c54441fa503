package domain

// Contact is a peer the current user is permitted to message. The
// directory owns these records; the messaging subsystem only reads them.
type Contact struct {
	UserName    string `json:"UserName"`
	FullName    string `json:"FullName"`
	Email       string `json:"Email,omitempty"`
	ParentEmail string `json:"ParentEmail,omitempty"`
	GroupID     string `json:"GroupId,omitempty"`
	GroupName   string `json:"GroupName,omitempty"`
	CreatedAt   string `json:"CreatedAt,omitempty"`
}

// LoginResult is the payload returned by a successful authentication.
type LoginResult struct {
	Token    string `json:"Token"`
	Username string `json:"Username"`
	GroupID  string `json:"GroupId"`
}
