package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"profilehub/internal/model"
)

// profileSchema holds the editable profile fields with their validation rules.
// Only the fields present in a patch are validated.
type profileSchema struct {
	Name            string   `validate:"required,max=100"`
	Location        string   `validate:"max=200"`
	FieldOfInterest []string `validate:"max=50,dive,max=100"`
	TechStack       []string `validate:"max=50,dive,max=100"`
	Seeking         []string `validate:"max=50,dive,max=100"`
	Bio             string   `validate:"max=1000"`
	GithubURL       string   `validate:"omitempty,http_url"`
	TwitterURL      string   `validate:"omitempty,http_url"`
	WebsiteURL      string   `validate:"omitempty,http_url"`
	LinkedinURL     string   `validate:"omitempty,http_url"`
}

var schemaJSONNames = map[string]string{
	"Name":            "name",
	"Location":        "location",
	"FieldOfInterest": "fieldOfInterest",
	"TechStack":       "techStack",
	"Seeking":         "seeking",
	"Bio":             "bio",
	"GithubURL":       "githubURL",
	"TwitterURL":      "twitterURL",
	"WebsiteURL":      "websiteURL",
	"LinkedinURL":     "linkedinURL",
}

var schemaValidator = validator.New()

func validatePatch(p model.ProfilePatch) error {
	var schema profileSchema
	var present []string
	setString := func(field string, src *string, dst *string) {
		if src != nil {
			*dst = *src
			present = append(present, field)
		}
	}
	setList := func(field string, src *[]string, dst *[]string) {
		if src != nil {
			*dst = *src
			present = append(present, field)
		}
	}
	setString("Name", p.Name, &schema.Name)
	setString("Location", p.Location, &schema.Location)
	setList("FieldOfInterest", p.FieldOfInterest, &schema.FieldOfInterest)
	setList("TechStack", p.TechStack, &schema.TechStack)
	setList("Seeking", p.Seeking, &schema.Seeking)
	setString("Bio", p.Bio, &schema.Bio)
	setString("GithubURL", p.GithubURL, &schema.GithubURL)
	setString("TwitterURL", p.TwitterURL, &schema.TwitterURL)
	setString("WebsiteURL", p.WebsiteURL, &schema.WebsiteURL)
	setString("LinkedinURL", p.LinkedinURL, &schema.LinkedinURL)
	if len(present) == 0 {
		return nil
	}

	err := schemaValidator.StructPartial(schema, present...)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		top := fe.StructField()
		if i := strings.IndexByte(top, '['); i >= 0 {
			top = top[:i]
		}
		name, ok := schemaJSONNames[top]
		if !ok {
			name = top
		}
		if _, seen := fields[name]; !seen {
			fields[name] = fieldMessage(name, fe)
		}
	}
	return &ValidationError{Message: "Validation Error", Fields: fields}
}

func fieldMessage(name string, fe validator.FieldError) string {
	label := strings.ToUpper(name[:1]) + name[1:]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "url", "http_url":
		return label + " must be a valid http(s) URL"
	case "max":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must have at most %s entries", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
