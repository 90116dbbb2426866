package model

import "time"

// User is a directory profile together with its login credentials.
// PasswordHash never leaves the process: it has no JSON representation.
type User struct {
	ID              string    `gorm:"primaryKey;size:36" json:"_id"`
	Name            string    `gorm:"size:100;not null;index" json:"name"`
	Email           string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	PasswordHash    string    `gorm:"column:password;size:255;not null" json:"-"`
	Gravatar        string    `gorm:"size:255" json:"gravatar,omitempty"`
	TechStack       []string  `gorm:"serializer:json;type:text" json:"techStack"`
	Location        string    `gorm:"size:200" json:"location,omitempty"`
	FieldOfInterest []string  `gorm:"serializer:json;type:text" json:"fieldOfInterest"`
	Seeking         []string  `gorm:"serializer:json;type:text" json:"seeking"`
	Bio             string    `gorm:"type:text" json:"bio,omitempty"`
	GithubURL       string    `gorm:"column:github_url;size:255" json:"githubURL,omitempty"`
	TwitterURL      string    `gorm:"column:twitter_url;size:255" json:"twitterURL,omitempty"`
	WebsiteURL      string    `gorm:"column:website_url;size:255" json:"websiteURL,omitempty"`
	LinkedinURL     string    `gorm:"column:linkedin_url;size:255" json:"linkedinURL,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ApplyPatch overwrites only the fields present in p.
func (u *User) ApplyPatch(p ProfilePatch) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.FieldOfInterest != nil {
		u.FieldOfInterest = *p.FieldOfInterest
	}
	if p.TechStack != nil {
		u.TechStack = *p.TechStack
	}
	if p.Seeking != nil {
		u.Seeking = *p.Seeking
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.GithubURL != nil {
		u.GithubURL = *p.GithubURL
	}
	if p.TwitterURL != nil {
		u.TwitterURL = *p.TwitterURL
	}
	if p.WebsiteURL != nil {
		u.WebsiteURL = *p.WebsiteURL
	}
	if p.LinkedinURL != nil {
		u.LinkedinURL = *p.LinkedinURL
	}
}

// NormalizeLists replaces nil list fields with empty ones so they encode as [].
func (u *User) NormalizeLists() {
	if u.TechStack == nil {
		u.TechStack = []string{}
	}
	if u.FieldOfInterest == nil {
		u.FieldOfInterest = []string{}
	}
	if u.Seeking == nil {
		u.Seeking = []string{}
	}
}
