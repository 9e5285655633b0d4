//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/target/eventhub/internal/domain/record"
)

const maxBioLen = 2000

// Record keys for profiles.
const (
	ProfileFieldUserID      = "user_id"
	ProfileFieldDisplayName = "display_name"
	ProfileFieldEmail       = "email"
	ProfileFieldBio         = "bio"
	ProfileFieldLocation    = "location"
	ProfileFieldAvatarURL   = "avatar_url"
	ProfileFieldInterests   = "interests"
)

// ProfileFields lists the writable profile keys.
var ProfileFields = []string{
	ProfileFieldUserID,
	ProfileFieldDisplayName,
	ProfileFieldEmail,
	ProfileFieldBio,
	ProfileFieldLocation,
	ProfileFieldAvatarURL,
	ProfileFieldInterests,
}

// Profile is the public face of a user.
type Profile struct {
	ID          int64  `json:"Id,omitempty"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Location    string `json:"location,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Interests   string `json:"interests,omitempty"`
}

// UpdateProfileRequest represents parameters to update the caller's profile.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Location    *string `json:"location,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Interests   *string `json:"interests,omitempty"`
}

// Validate ensures at least one field is set and values are sane.
func (r *UpdateProfileRequest) Validate() error {
	if len(r.Record()) == 0 {
		return errors.New("at least one field must be updated")
	}
	if r.DisplayName != nil {
		n := strings.TrimSpace(*r.DisplayName)
		if n == "" {
			return errors.New("display_name cannot be empty")
		}
		*r.DisplayName = n
	}
	if r.Email != nil && *r.Email != "" {
		if _, err := mail.ParseAddress(*r.Email); err != nil {
			return errors.New("email is not a valid address")
		}
	}
	if r.Bio != nil && utf8.RuneCountInString(*r.Bio) > maxBioLen {
		return errors.New("bio cannot exceed 2000 characters")
	}
	return nil
}

// Record returns only the fields set on the request.
func (r *UpdateProfileRequest) Record() record.Record {
	patch := record.Record{}
	setIf(patch, ProfileFieldDisplayName, r.DisplayName)
	setIf(patch, ProfileFieldEmail, r.Email)
	setIf(patch, ProfileFieldBio, r.Bio)
	setIf(patch, ProfileFieldLocation, r.Location)
	setIf(patch, ProfileFieldAvatarURL, r.AvatarURL)
	setIf(patch, ProfileFieldInterests, r.Interests)
	return patch
}

// Apply copies the set fields onto p.
func (r *UpdateProfileRequest) Apply(p *Profile) {
	if r.DisplayName != nil {
		p.DisplayName = *r.DisplayName
	}
	if r.Email != nil {
		p.Email = *r.Email
	}
	if r.Bio != nil {
		p.Bio = *r.Bio
	}
	if r.Location != nil {
		p.Location = *r.Location
	}
	if r.AvatarURL != nil {
		p.AvatarURL = *r.AvatarURL
	}
	if r.Interests != nil {
		p.Interests = *r.Interests
	}
}

// Record converts the full profile to backend fields.
func (p Profile) Record() record.Record {
	return record.Record{
		ProfileFieldUserID:      p.UserID,
		ProfileFieldDisplayName: p.DisplayName,
		ProfileFieldEmail:       p.Email,
		ProfileFieldBio:         p.Bio,
		ProfileFieldLocation:    p.Location,
		ProfileFieldAvatarURL:   p.AvatarURL,
		ProfileFieldInterests:   p.Interests,
	}
}
