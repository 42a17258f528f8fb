package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nhle/techtracker/internal/model"
)

// Names lists the settings accepted by Apply and Get.
var Names = []string{"theme", "language", "notifications", "autoSave", "exportFormat"}

// Apply sets the field called name on s. Names match case-insensitively.
func Apply(s *model.Settings, name, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(name) {
	case "theme":
		switch t := model.Theme(strings.ToLower(value)); t {
		case model.ThemeLight, model.ThemeDark:
			s.Theme = t
		default:
			return fmt.Errorf("theme must be light or dark, got %q", value)
		}
	case "language":
		switch l := model.Language(strings.ToLower(value)); l {
		case model.LanguageRussian, model.LanguageEnglish:
			s.Language = l
		default:
			return fmt.Errorf("language must be ru or en, got %q", value)
		}
	case "notifications":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("notifications must be true or false, got %q", value)
		}
		s.Notifications = b
	case "autosave":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("autoSave must be true or false, got %q", value)
		}
		s.AutoSave = b
	case "exportformat":
		switch f := model.ExportFormat(strings.ToLower(value)); f {
		case model.ExportJSON, model.ExportCSV:
			s.ExportFormat = f
		default:
			return fmt.Errorf("exportFormat must be json or csv, got %q", value)
		}
	default:
		return fmt.Errorf("unknown setting %q (known: %s)", name, strings.Join(Names, ", "))
	}
	return nil
}

// Get returns the textual value of the field called name.
func Get(s model.Settings, name string) (string, error) {
	switch strings.ToLower(name) {
	case "theme":
		return string(s.Theme), nil
	case "language":
		return string(s.Language), nil
	case "notifications":
		return strconv.FormatBool(s.Notifications), nil
	case "autosave":
		return strconv.FormatBool(s.AutoSave), nil
	case "exportformat":
		return string(s.ExportFormat), nil
	default:
		return "", fmt.Errorf("unknown setting %q (known: %s)", name, strings.Join(Names, ", "))
	}
}
