// Package render derives the display view of a site document. The public page
// and the admin preview are both rendered from the same View.
package render

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/bcmimarlik/site/internal/model"
)

type MediaKind string

const (
	MediaImage       MediaKind = "image"
	MediaVideo       MediaKind = "video"
	MediaPlaceholder MediaKind = "placeholder"
)

// MapsURL is the studio location linked from the address block.
const MapsURL = "https://maps.app.goo.gl/72Zi7iHL8BQ8YDRd9"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ProjectView struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	AltText    string    `json:"alt"`
	MediaURL   string    `json:"url,omitempty"`
	Kind       MediaKind `json:"kind"`
	InProgress bool      `json:"inProgress"`
}

// Link is a text that is optionally clickable. Href is empty when the text
// does not yield a valid link and must be shown as plain text.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

type View struct {
	Projects     []ProjectView `json:"projects"`
	AddressLines []string      `json:"addressLines"`
	MapsURL      string        `json:"mapsUrl"`
	Phone        Link          `json:"phone"`
	Email        Link          `json:"email"`
	WhatsappURL  string        `json:"whatsappUrl"`
	InstagramURL string        `json:"instagramUrl"`
}

// Project builds the view of doc. It has no side effects and the result
// shares no memory with doc.
func Project(doc *model.SiteDocument) View {
	if doc == nil {
		doc = model.Default()
	}

	view := View{
		Projects:     make([]ProjectView, 0, len(doc.Projects)),
		AddressLines: append([]string{}, doc.Contact.AddressLines...),
		MapsURL:      MapsURL,
		Phone:        Link{Text: doc.Contact.PhoneText, Href: PhoneLink(doc.Contact.PhoneText)},
		Email:        Link{Text: doc.Contact.EmailText, Href: EmailLink(doc.Contact.EmailText)},
		WhatsappURL:  WhatsappLink(doc.Links.WhatsappURL),
		InstagramURL: doc.Links.InstagramURL,
	}

	for _, p := range doc.Projects {
		kind := ClassifyMedia(p.MediaURL, p.IsVideo)
		pv := ProjectView{
			ID:         p.ID,
			Name:       p.Name,
			AltText:    p.AltText,
			Kind:       kind,
			InProgress: p.InProgress,
		}
		if kind != MediaPlaceholder {
			pv.MediaURL = strings.TrimSpace(p.MediaURL)
		}
		view.Projects = append(view.Projects, pv)
	}

	return view
}

// ValidMediaURL reports whether the trimmed url is a site path or an http(s) url.
func ValidMediaURL(raw string) bool {
	u := strings.TrimSpace(raw)
	if u == "" {
		return false
	}
	return strings.HasPrefix(u, "/") || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func ClassifyMedia(raw string, isVideo bool) MediaKind {
	switch {
	case !ValidMediaURL(raw):
		return MediaPlaceholder
	case isVideo:
		return MediaVideo
	default:
		return MediaImage
	}
}

// PhoneLink returns a tel: link with the Turkish country code, or "" when the
// text holds fewer than ten digits.
func PhoneLink(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) < 10 {
		return ""
	}

	switch {
	case strings.HasPrefix(digits, "90"):
		return "tel:+" + digits
	case strings.HasPrefix(digits, "0"):
		return "tel:+90" + digits[1:]
	default:
		return "tel:+90" + digits
	}
}

// EmailLink returns a Gmail compose link for a plausible address, or "".
func EmailLink(text string) string {
	addr := strings.TrimSpace(text)
	if !emailPattern.MatchString(addr) {
		return ""
	}
	return "https://mail.google.com/mail/?view=cm&fs=1&to=" + url.QueryEscape(addr)
}

// WhatsappLink strips the leading '#' placeholder characters.
func WhatsappLink(raw string) string {
	return strings.TrimLeft(raw, "#")
}
