package study

import "regexp"

// identityPattern accepts mainland mobile numbers: 11 digits, a leading 1,
// second digit 3-9.
var identityPattern = regexp.MustCompile(`^1[3-9][0-9]{9}$`)

// Speed limits for video playback.
const (
	MinSpeed = 1
	MaxSpeed = 2
)

// ValidIdentity reports whether identity has the accepted phone number format.
func ValidIdentity(identity string) bool {
	return identityPattern.MatchString(identity)
}

// Validate checks the credential's format.
func (c Credential) Validate() error {
	if !ValidIdentity(c.Identity) {
		return &ValidationError{Field: "username", Message: "must be an 11 digit mobile number"}
	}
	if c.Secret == "" {
		return &ValidationError{Field: "password", Message: "is required"}
	}
	return nil
}

// StartRequest asks for a new study job.
type StartRequest struct {
	Credential Credential
	CourseIDs  []string
	Speed      int
}

// Validate checks the request before anything is fingerprinted or registered.
func (r StartRequest) Validate() error {
	if err := r.Credential.Validate(); err != nil {
		return err
	}
	if len(r.CourseIDs) == 0 {
		return &ValidationError{Field: "course_list", Message: "must not be empty"}
	}
	if r.Speed < MinSpeed || r.Speed > MaxSpeed {
		return &ValidationError{Field: "speed", Message: "must be between 1 and 2"}
	}
	return nil
}
