package model

// ProfilePatch carries a partial profile update; nil fields are left untouched.
type ProfilePatch struct {
	Name            *string
	Location        *string
	FieldOfInterest *[]string
	TechStack       *[]string
	Seeking         *[]string
	Bio             *string
	GithubURL       *string
	TwitterURL      *string
	WebsiteURL      *string
	LinkedinURL     *string
}

func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Location == nil && p.FieldOfInterest == nil &&
		p.TechStack == nil && p.Seeking == nil && p.Bio == nil &&
		p.GithubURL == nil && p.TwitterURL == nil && p.WebsiteURL == nil && p.LinkedinURL == nil
}
