package model

// Theme selects the terminal color palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Language selects the interface language.
type Language string

const (
	LanguageRussian Language = "ru"
	LanguageEnglish Language = "en"
)

// ExportFormat selects the file format used by export.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// Settings is the per-user application settings blob. It is persisted
// separately from the technology collection.
type Settings struct {
	Theme         Theme        `json:"theme"`
	Language      Language     `json:"language"`
	Notifications bool         `json:"notifications"`
	AutoSave      bool         `json:"autoSave"`
	ExportFormat  ExportFormat `json:"exportFormat"`
}

// DefaultSettings returns the settings used on first start and after a reset.
func DefaultSettings() Settings {
	return Settings{
		Theme:         ThemeLight,
		Language:      LanguageRussian,
		Notifications: true,
		AutoSave:      true,
		ExportFormat:  ExportJSON,
	}
}

// Normalize replaces unknown enum values with their defaults.
func (s Settings) Normalize() Settings {
	def := DefaultSettings()
	switch s.Theme {
	case ThemeLight, ThemeDark:
	default:
		s.Theme = def.Theme
	}
	switch s.Language {
	case LanguageRussian, LanguageEnglish:
	default:
		s.Language = def.Language
	}
	switch s.ExportFormat {
	case ExportJSON, ExportCSV:
	default:
		s.ExportFormat = def.ExportFormat
	}
	return s
}
