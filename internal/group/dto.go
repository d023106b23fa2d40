package group

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string              `json:"name" validate:"required,min=1,max=100"`
	Description *string             `json:"description,omitempty"`
	Currency    string              `json:"currency" validate:"required,len=3"`
	Members     []*AddMemberRequest `json:"members" validate:"required,min=1"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	Currency    *string `json:"currency,omitempty"`
}

// AddMemberRequest represents the request to add a member to a group. The id
// is generated when omitted.
type AddMemberRequest struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
}

// UpdateMemberRequest represents the request to rename a member
type UpdateMemberRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Currency    string            `json:"currency"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	JoinedAt    string `json:"joined_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Currency:    g.Currency,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		JoinedAt:    m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}
