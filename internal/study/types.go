package study

import "time"

// Credential is the identity/secret pair a job runs for.
type Credential struct {
	Identity string
	Secret   string
}

// Course is one entry of an identity's course catalog.
type Course struct {
	ID string
	// ClassID and CPI are extra routing keys the platform wants alongside ID.
	ClassID string
	CPI     string
	Title   string
}

// Chapter is a node of a course's chapter list.
type Chapter struct {
	ID    string
	Title string
}

// ItemType is the closed set of work item kinds the dispatcher knows.
type ItemType int

// Work item kinds. ItemUnknown covers everything the platform may add later.
const (
	ItemUnknown ItemType = iota
	ItemVideo
	ItemDocument
	ItemQuiz
)

// ParseItemType maps the platform's type tag to an ItemType.
func ParseItemType(tag string) ItemType {
	switch tag {
	case "video":
		return ItemVideo
	case "document":
		return ItemDocument
	case "workid":
		return ItemQuiz
	default:
		return ItemUnknown
	}
}

func (t ItemType) String() string {
	switch t {
	case ItemVideo:
		return "video"
	case ItemDocument:
		return "document"
	case ItemQuiz:
		return "quiz"
	default:
		return "unknown"
	}
}

// WorkItem is the smallest unit of course content.
type WorkItem struct {
	ID       string
	Type     ItemType
	Title    string
	ObjectID string
	// Duration is the media length for videos, zero otherwise.
	Duration time.Duration
}

// ItemContext is chapter-level data returned with a chapter's item list that
// the video player needs to report progress.
type ItemContext map[string]string

// AuthResult is the outcome of a login attempt the platform answered.
type AuthResult struct {
	OK bool
	// Reason is the platform's explanation when OK is false.
	Reason string
}
