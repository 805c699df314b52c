package tui

import (
	"errors"
	"testing"

	"golang.org/x/text/language"

	"github.com/benamedd/phytoscan/internal/analysis"
)

func TestCatalogFor(t *testing.T) {
	if got := catalogFor(language.MustParse("fr-CA")).SelectFile; got != "Veuillez sélectionner un fichier" {
		t.Fatalf("regional french should use the french catalog, got %q", got)
	}
	if got := catalogFor(language.Japanese).SelectFile; got != "Please select a file" {
		t.Fatalf("unsupported languages fall back to english, got %q", got)
	}
	if got := catalogFor(language.Tag{}).Analyzing; got != "Analyzing…" {
		t.Fatalf("zero tag should use english, got %q", got)
	}
}

func TestErrorText(t *testing.T) {
	text := catalogFor(language.English)
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "no file", err: analysis.ErrNoFile, want: "Please select a file"},
		{name: "server message", err: &analysis.ServerError{StatusCode: 413, Message: "file too large"}, want: "file too large"},
		{name: "bare status", err: &analysis.ServerError{StatusCode: 500}, want: "server error: 500"},
		{name: "parse", err: &analysis.ParseError{Err: errors.New("eof")}, want: "unexpected response from server"},
		{name: "transport", err: &analysis.TransportError{Err: errors.New("connection refused")}, want: "connection refused"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := text.errorText(tc.err); got != tc.want {
				t.Fatalf("errorText = %q, want %q", got, tc.want)
			}
		})
	}
}
