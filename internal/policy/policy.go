// Package policy holds the pure authorization decisions for ratings. The
// functions here perform no I/O; callers resolve the actor and the rating
// owner before asking.
package policy

import "github.com/storerate/storerate/internal/domain"

// CanCreateRating reports whether a role may author new ratings. Only normal
// users create ratings; admins moderate existing ones but do not author
// through this path.
func CanCreateRating(role domain.Role) bool {
	return role == domain.RoleNormalUser
}

// CanMutateRating reports whether the actor may update or delete the rating
// owned by ownerID.
func CanMutateRating(actorID int64, role domain.Role, ownerID int64) bool {
	return role == domain.RoleAdmin || actorID == ownerID
}

// CanViewUnredacted reports whether the actor may see the author identity of
// an anonymous rating owned by ownerID.
func CanViewUnredacted(actorID int64, role domain.Role, ownerID int64) bool {
	return role == domain.RoleAdmin || actorID == ownerID
}

// CanViewUserRatings reports whether the actor may list the ratings authored
// by userID.
func CanViewUserRatings(actorID int64, role domain.Role, userID int64) bool {
	return role == domain.RoleAdmin || actorID == userID
}
