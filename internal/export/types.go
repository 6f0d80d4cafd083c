// Package export shapes stored generation results for the result viewers:
// grouping and filtering of calendar posts, the month grid, and file
// exports (CSV, XLSX, plain text).
package export

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

type CalendarPost struct {
	Date     string   `json:"date"`
	Week     int      `json:"week"`
	Platform string   `json:"platform"`
	Format   string   `json:"format"`
	Pillar   string   `json:"pillar"`
	Title    string   `json:"title"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

func (p CalendarPost) Day() (time.Time, error) {
	return time.Parse(dateLayout, p.Date)
}

// ContentAnalysis is the result of a content calendar generation.
type ContentAnalysis struct {
	Strategy string         `json:"strategy"`
	Pillars  []string       `json:"pillars"`
	Posts    []CalendarPost `json:"posts"`
}

type Email struct {
	Day          int    `json:"day"`
	Subject      string `json:"subject"`
	PreviewText  string `json:"previewText"`
	Body         string `json:"body"`
	CallToAction string `json:"callToAction"`
	Purpose      string `json:"purpose"`
}

// EmailSequenceAnalysis is the result of an email sequence generation.
type EmailSequenceAnalysis struct {
	SequenceName string  `json:"sequenceName"`
	Strategy     string  `json:"strategy"`
	Emails       []Email `json:"emails"`
}

var ErrEmptyResult = errors.New("empty result")

func (a ContentAnalysis) Validate() error {
	if len(a.Posts) == 0 {
		return fmt.Errorf("%w: no posts", ErrEmptyResult)
	}
	for i, p := range a.Posts {
		if _, err := p.Day(); err != nil {
			return fmt.Errorf("post %d: bad date %q", i+1, p.Date)
		}
	}
	return nil
}

func (a EmailSequenceAnalysis) Validate() error {
	if len(a.Emails) == 0 {
		return fmt.Errorf("%w: no emails", ErrEmptyResult)
	}
	for i, e := range a.Emails {
		if e.Subject == "" {
			return fmt.Errorf("email %d: missing subject", i+1)
		}
	}
	return nil
}
