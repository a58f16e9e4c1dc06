package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangParam is the query parameter used to select a language on the
// WebSocket upgrade request.
const LangParam = "lang"

// Message keys for notices broadcast to a room.
const (
	ToastSwapAll   = "toast.swap_all"
	ToastKnock     = "toast.knock"
	ToastThirtyOne = "toast.thirty_one"
	ToastGameOver  = "toast.game_over"
	ToastLeft      = "toast.left"
)

var supportedTags = []language.Tag{
	language.English,
	language.German,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.English
}

// ParseTag matches value against the supported languages.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	_, idx, confidence := tagMatcher.Match(tag)
	if confidence == language.No {
		return language.Und, false
	}
	return supportedTags[idx], true
}

// ResolveTag picks the language for a request: the lang query parameter
// first, then Accept-Language, then fallback.
func ResolveTag(r *http.Request, fallback language.Tag) language.Tag {
	if r == nil {
		return fallback
	}

	if tag, ok := ParseTag(r.URL.Query().Get(LangParam)); ok {
		return tag
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if _, idx, confidence := tagMatcher.Match(tags...); confidence != language.No {
				return supportedTags[idx]
			}
		}
	}

	return fallback
}

// Translator renders messages in one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// NewTranslator returns a translator for tag.
func NewTranslator(tag language.Tag) *Translator {
	return &Translator{tag: tag, printer: message.NewPrinter(tag)}
}

// Tag returns the translator's language.
func (t *Translator) Tag() language.Tag { return t.tag }

// Error returns the user-facing text for an error code such as
// "ROOM_NOT_FOUND". Unknown codes fall back to a generic message.
func (t *Translator) Error(code string) string {
	key := "error." + code
	if !hasKey(key) {
		key = "error.UNKNOWN"
	}
	return t.printer.Sprintf(key)
}

// Sprintf formats the message registered under key.
func (t *Translator) Sprintf(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}

var registeredKeys = map[string]bool{}

func set(tag language.Tag, key, msg string) {
	registeredKeys[key] = true
	if err := message.SetString(tag, key, msg); err != nil {
		panic("i18n: " + key + ": " + err.Error())
	}
}

func hasKey(key string) bool {
	return registeredKeys[key]
}
