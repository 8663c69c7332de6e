// Package translate formats error messages for the user's locale.
//
// Only diagnostics go through here. Trace and report output keeps a fixed
// format, since the message printer groups digits in large numbers.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fallback is the language used when the system reports no usable locale.
var Fallback = language.AmericanEnglish

var (
	tag     language.Tag
	printer *message.Printer
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("pipesim: locale: %v", err)
	}

	tag = Preferred(locales)
	printer = message.NewPrinter(tag)
}

// Preferred returns the first locale that parses as a BCP 47 tag, or
// Fallback when none does.
func Preferred(locales []string) language.Tag {
	for _, l := range locales {
		t, err := language.Parse(l)
		if err == nil && t != language.Und {
			return t
		}
	}
	return Fallback
}

// Tag returns the language messages are formatted for.
func Tag() language.Tag {
	return tag
}

// From formats an en-US Sprintf() format for the current locale.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
