package gate

import "context"

// Ownable marks resources that belong to a user. Models implement it to
// opt in to OwnershipPolicy.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows an action only when the subject owns the resource.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can reports whether userID owns resource. A nil resource is a
// collection-level check (create, list) and passes; a resource that does
// not implement Ownable is denied rather than silently allowed.
func (p *OwnershipPolicy) Can(_ context.Context, userID uint, _ Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == userID
}
