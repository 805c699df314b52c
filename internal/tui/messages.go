package tui

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/benamedd/phytoscan/internal/analysis"
)

// catalog holds every user-facing string for one language.
type catalog struct {
	Title          string
	SelectedFile   string
	NoPreview      string
	AnalyzeHint    string
	Analyzing      string
	ErrorLabel     string
	SelectFile     string
	ServerStatus   string
	ResultsTitle   string
	InfectionLevel string
	AnnotatedImage string
	LoadingImage   string
	LoadingPreview string
	ImageFailed    string
	PickerTitle    string
	PickerHint     string
	NotAvailable   string

	KeyOpen    string
	KeyAnalyze string
	KeyReset   string
	KeyCancel  string
	KeyHelp    string
	KeyQuit    string
}

var catalogs = map[language.Tag]catalog{
	language.English: {
		Title:          "Plant disease analysis",
		SelectedFile:   "Selected file: %s",
		NoPreview:      "(no preview available)",
		AnalyzeHint:    "Press a to analyze",
		Analyzing:      "Analyzing…",
		ErrorLabel:     "✗ Error",
		SelectFile:     "Please select a file",
		ServerStatus:   "server error: %d",
		ResultsTitle:   "Analysis results",
		InfectionLevel: "Infection level: %s",
		AnnotatedImage: "Annotated image: %s",
		LoadingImage:   "loading annotated image…",
		LoadingPreview: "loading preview…",
		ImageFailed:    "annotated image unavailable: %s",
		PickerTitle:    "Choose an image",
		PickerHint:     "enter to pick, esc to cancel",
		NotAvailable:   "N/A",
		KeyOpen:        "open image",
		KeyAnalyze:     "analyze",
		KeyReset:       "reset",
		KeyCancel:      "cancel",
		KeyHelp:        "toggle help",
		KeyQuit:        "quit",
	},
	language.French: {
		Title:          "Analyse des maladies des plantes",
		SelectedFile:   "Fichier sélectionné : %s",
		NoPreview:      "(aperçu indisponible)",
		AnalyzeHint:    "Appuyez sur a pour analyser",
		Analyzing:      "Analyse en cours…",
		ErrorLabel:     "✗ Erreur",
		SelectFile:     "Veuillez sélectionner un fichier",
		ServerStatus:   "Erreur serveur: %d",
		ResultsTitle:   "Résultats de l'analyse",
		InfectionLevel: "Niveau d'infection : %s",
		AnnotatedImage: "Image annotée : %s",
		LoadingImage:   "chargement de l'image annotée…",
		LoadingPreview: "chargement de l'aperçu…",
		ImageFailed:    "image annotée indisponible : %s",
		PickerTitle:    "Choisir une image",
		PickerHint:     "entrée pour choisir, échap pour annuler",
		NotAvailable:   "N/A",
		KeyOpen:        "ouvrir une image",
		KeyAnalyze:     "analyser",
		KeyReset:       "réinitialiser",
		KeyCancel:      "annuler",
		KeyHelp:        "aide",
		KeyQuit:        "quitter",
	},
}

func catalogFor(tag language.Tag) catalog {
	if c, ok := catalogs[tag]; ok {
		return c
	}
	base, _ := tag.Base()
	for candidate, c := range catalogs {
		if b, _ := candidate.Base(); b == base {
			return c
		}
	}
	return catalogs[language.English]
}

// errorText localizes the messages the widget itself produces. Server
// provided messages are shown verbatim.
func (c catalog) errorText(err error) string {
	var serverErr *analysis.ServerError
	switch {
	case errors.Is(err, analysis.ErrNoFile):
		return c.SelectFile
	case errors.As(err, &serverErr) && serverErr.Message == "":
		return fmt.Sprintf(c.ServerStatus, serverErr.StatusCode)
	default:
		return analysis.UserMessage(err)
	}
}
