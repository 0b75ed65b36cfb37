package model

// Default returns a fresh copy of the built-in document. It is the fallback
// whenever the store has nothing usable.
func Default() *SiteDocument {
	return &SiteDocument{
		Projects: []ProjectEntry{
			{
				ID:         1,
				Name:       "Akçapınar Lofts",
				MediaURL:   "https://images.unsplash.com/photo-1600585154340-be6161a56a0c?w=1200&h=900&fit=crop&q=80",
				AltText:    "Akçapınar Lofts",
				IsVideo:    false,
				InProgress: true,
			},
			{
				ID:         2,
				Name:       "Akyaka Villa Marine",
				MediaURL:   "/akyaka-villa-marine1 (1).webp",
				AltText:    "Akyaka Villa Marine",
				IsVideo:    false,
				InProgress: false,
			},
			{
				ID:         3,
				Name:       "Akyaka Panorama",
				MediaURL:   "/akyaka-panorama.mp4",
				AltText:    "Akyaka Panorama",
				IsVideo:    true,
				InProgress: false,
			},
		},
		Contact: ContactInfo{
			AddressLines: []string{
				"Akyaka Mahallesi, Şakayık Sokak, No:2/2",
				"Ula, Muğla",
			},
			PhoneText: "Görüşme talebi için WhatsApp'ı kullanın",
			EmailText: "Görüşme talebi için WhatsApp'ı kullanın",
		},
		Links: LinksInfo{
			WhatsappURL:  "#",
			InstagramURL: "https://instagram.com/bc_architect",
		},
	}
}

// NewProject returns the placeholder entry appended by the editor.
func NewProject(id int) ProjectEntry {
	return ProjectEntry{
		ID:      id,
		Name:    "Yeni Proje",
		AltText: "Yeni Proje",
	}
}
