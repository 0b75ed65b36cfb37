package model

import (
	"encoding/json"
	"errors"
)

var (
	// ErrProjectsNotList is returned when a document has no projects list.
	ErrProjectsNotList = errors.New("projects must be a list")
)

// ProjectEntry is one showcased work item.
type ProjectEntry struct {
	ID         int    `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	MediaURL   string `json:"url" yaml:"url"`
	AltText    string `json:"alt" yaml:"alt"`
	IsVideo    bool   `json:"hasVideo" yaml:"hasVideo"`
	InProgress bool   `json:"inProgress" yaml:"inProgress"`
}

// ContactInfo holds the footer contact block.
type ContactInfo struct {
	AddressLines []string `json:"addressLines" yaml:"addressLines"`
	PhoneText    string   `json:"phoneText" yaml:"phoneText"`
	EmailText    string   `json:"emailText" yaml:"emailText"`
}

// LinksInfo holds the social links.
type LinksInfo struct {
	WhatsappURL  string `json:"whatsappUrl" yaml:"whatsappUrl"`
	InstagramURL string `json:"instagramUrl" yaml:"instagramUrl"`
}

// SiteDocument is the single unit of persistence and transfer.
// It is always read and written as a whole.
type SiteDocument struct {
	Projects []ProjectEntry `json:"projects" yaml:"projects"`
	Contact  ContactInfo    `json:"contact" yaml:"contact"`
	Links    LinksInfo      `json:"links" yaml:"links"`
}

// Clone returns a deep copy of the document.
func (d *SiteDocument) Clone() *SiteDocument {
	if d == nil {
		return nil
	}

	out := &SiteDocument{
		Contact: d.Contact,
		Links:   d.Links,
	}
	if d.Projects != nil {
		out.Projects = make([]ProjectEntry, len(d.Projects))
		copy(out.Projects, d.Projects)
	}
	if d.Contact.AddressLines != nil {
		out.Contact.AddressLines = make([]string, len(d.Contact.AddressLines))
		copy(out.Contact.AddressLines, d.Contact.AddressLines)
	}

	return out
}

// NextProjectID returns max(existing ids ∪ {0}) + 1.
func (d *SiteDocument) NextProjectID() int {
	next := 0
	for _, p := range d.Projects {
		if p.ID > next {
			next = p.ID
		}
	}
	return next + 1
}

// Validate performs the minimal check required before a write.
func (d *SiteDocument) Validate() error {
	if d == nil || d.Projects == nil {
		return ErrProjectsNotList
	}
	return nil
}

// MarshalBinary encodes the document as JSON.
func (d *SiteDocument) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}

// UnmarshalBinary decodes a JSON document.
func (d *SiteDocument) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, d)
}
