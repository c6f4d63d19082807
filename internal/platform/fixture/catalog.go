package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog is the complete content of a fixture platform.
type Catalog struct {
	// Accounts maps identity to secret.
	Accounts map[string]string `yaml:"accounts"`
	Courses  []CourseSpec      `yaml:"courses"`
}

// CourseSpec describes one course. Every account sees every course.
type CourseSpec struct {
	ID       string        `yaml:"id"`
	ClassID  string        `yaml:"class_id"`
	CPI      string        `yaml:"cpi"`
	Title    string        `yaml:"title"`
	Chapters []ChapterSpec `yaml:"chapters"`
}

// ChapterSpec describes one chapter. A broken chapter fails its item fetch.
type ChapterSpec struct {
	ID     string            `yaml:"id"`
	Title  string            `yaml:"title"`
	Broken bool              `yaml:"broken"`
	Info   map[string]string `yaml:"info"`
	Items  []ItemSpec        `yaml:"items"`
}

// ItemSpec describes one work item. Type uses the platform's wire spelling.
type ItemSpec struct {
	ID       string        `yaml:"id"`
	Type     string        `yaml:"type"`
	Title    string        `yaml:"title"`
	ObjectID string        `yaml:"object_id"`
	Duration time.Duration `yaml:"duration"`
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture catalog: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a catalog and checks it for duplicate ids.
func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixture catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	courses := make(map[string]bool)
	for _, course := range c.Courses {
		if course.ID == "" {
			return errors.New("fixture catalog: course without id")
		}
		if courses[course.ID] {
			return fmt.Errorf("fixture catalog: duplicate course %q", course.ID)
		}
		courses[course.ID] = true

		chapters := make(map[string]bool)
		for _, ch := range course.Chapters {
			if ch.ID == "" {
				return fmt.Errorf("fixture catalog: chapter without id in course %q", course.ID)
			}
			if chapters[ch.ID] {
				return fmt.Errorf("fixture catalog: duplicate chapter %q in course %q", ch.ID, course.ID)
			}
			chapters[ch.ID] = true

			for _, item := range ch.Items {
				if item.Duration < 0 {
					return fmt.Errorf("fixture catalog: negative duration for item %q", item.ID)
				}
			}
		}
	}
	return nil
}

func (c *Catalog) course(id string) (CourseSpec, bool) {
	for _, course := range c.Courses {
		if course.ID == id {
			return course, true
		}
	}
	return CourseSpec{}, false
}
