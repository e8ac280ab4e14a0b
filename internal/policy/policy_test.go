package policy

import (
	"testing"

	"github.com/storerate/storerate/internal/domain"
)

func TestCanCreateRating(t *testing.T) {
	tests := []struct {
		role domain.Role
		want bool
	}{
		{domain.RoleNormalUser, true},
		{domain.RoleStoreOwner, false},
		{domain.RoleAdmin, false},
		{domain.Role("unknown"), false},
	}
	for _, tt := range tests {
		if got := CanCreateRating(tt.role); got != tt.want {
			t.Fatalf("CanCreateRating(%s) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestCanMutateRating(t *testing.T) {
	tests := []struct {
		name    string
		actorID int64
		role    domain.Role
		ownerID int64
		want    bool
	}{
		{"owner", 7, domain.RoleNormalUser, 7, true},
		{"other user", 7, domain.RoleNormalUser, 8, false},
		{"admin over any rating", 1, domain.RoleAdmin, 8, true},
		{"store owner over another's rating", 3, domain.RoleStoreOwner, 8, false},
		{"store owner over own rating", 3, domain.RoleStoreOwner, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutateRating(tt.actorID, tt.role, tt.ownerID); got != tt.want {
				t.Fatalf("CanMutateRating(%d, %s, %d) = %v, want %v", tt.actorID, tt.role, tt.ownerID, got, tt.want)
			}
		})
	}
}

func TestCanViewUnredacted(t *testing.T) {
	if !CanViewUnredacted(5, domain.RoleNormalUser, 5) {
		t.Fatalf("author should see their own anonymous rating")
	}
	if !CanViewUnredacted(1, domain.RoleAdmin, 5) {
		t.Fatalf("admin should see any anonymous rating")
	}
	if CanViewUnredacted(2, domain.RoleNormalUser, 5) {
		t.Fatalf("other users should not see anonymous author identity")
	}
	if CanViewUnredacted(2, domain.RoleStoreOwner, 5) {
		t.Fatalf("store owners should not see anonymous author identity")
	}
}

func TestCanViewUserRatings(t *testing.T) {
	if !CanViewUserRatings(9, domain.RoleNormalUser, 9) {
		t.Fatalf("user should view their own ratings")
	}
	if !CanViewUserRatings(1, domain.RoleAdmin, 9) {
		t.Fatalf("admin should view any user's ratings")
	}
	if CanViewUserRatings(2, domain.RoleNormalUser, 9) {
		t.Fatalf("user should not view another user's ratings")
	}
}
