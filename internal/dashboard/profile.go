package dashboard

import (
	"context"
	"errors"
	"strings"

	"claudehub/internal/records"
)

// ProfileUpdate carries the editable profile fields; nil leaves a field as is
// and an empty string clears it.
type ProfileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

func (u ProfileUpdate) changes() records.Changes {
	changes := records.Changes{}
	set := func(column string, v *string) {
		if v == nil {
			return
		}
		if trimmed := strings.TrimSpace(*v); trimmed != "" {
			changes[column] = trimmed
		} else {
			changes[column] = nil
		}
	}
	set("first_name", u.FirstName)
	set("last_name", u.LastName)
	set("phone", u.Phone)
	return changes
}

// Profile returns the user's profile, or a minimal one built from the
// account when no row exists yet.
func (s *Service) Profile(ctx context.Context, user records.User) (*records.Profile, error) {
	var p records.Profile
	err := s.records.GetRow(ctx, records.TableProfiles, records.Filter{"id": user.ID}, &p)
	if errors.Is(err, records.ErrNotFound) {
		return &records.Profile{ID: user.ID, CreatedAt: user.CreatedAt, Email: user.Email}, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, user records.User, update ProfileUpdate) (*records.Profile, error) {
	changes := update.changes()
	if len(changes) > 0 {
		if err := s.records.UpdateRow(ctx, records.TableProfiles, records.Filter{"id": user.ID}, changes); err != nil {
			return nil, err
		}
	}
	return s.Profile(ctx, user)
}
