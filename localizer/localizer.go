// Package localizer loads the JSON translation bundles of the console and
// picks the language of each request.
package localizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/cypher"
)

type Localizer map[string]string

// Get returns the translation of key, or key itself when missing.
func (loc Localizer) Get(key string) string {
	val, ok := loc[key]
	if !ok {
		return key
	}
	return val
}

func (loc Localizer) Format(key string, args ...any) string {
	return fmt.Sprintf(loc.Get(key), args...)
}

// i18n maps a language code to its bundle.
type i18n map[string]Localizer

const FallbackLanguage = "en"

var supportedLanguages = []string{"en", "pt"}

var supportedTags = []language.Tag{
	language.English,
	language.Portuguese,
}

const cookieKey = "language"

type Store struct {
	files     fs.FS
	sharedKey string
	errorsKey string
	cypher    core.Cypher
	matcher   language.Matcher
	log       zerolog.Logger

	mu    sync.RWMutex
	cache map[string]i18n
}

// NewStore reads bundles named "<key>.json" from files. The shared bundle is
// merged into every other one.
func NewStore(files fs.FS, sharedKey, errorsKey string, cy core.Cypher, logger zerolog.Logger) *Store {
	return &Store{
		files:     files,
		sharedKey: sharedKey,
		errorsKey: errorsKey,
		cypher:    cy,
		matcher:   language.NewMatcher(supportedTags),
		log:       logger.With().Str("component", "localizer").Logger(),
		cache:     make(map[string]i18n),
	}
}

func (s *Store) loadFile(key string) (i18n, error) {
	s.mu.RLock()
	values, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return values, nil
	}
	file := fmt.Sprintf("%s.json", key)
	raw, err := fs.ReadFile(s.files, file)
	if err != nil {
		return nil, fmt.Errorf("cannot read localization file %s: %w", file, err)
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("cannot decode localization file %s: %w", file, err)
	}
	s.mu.Lock()
	s.cache[key] = values
	s.mu.Unlock()
	s.log.Debug().Str("file", file).Msg("loaded localization")
	return values, nil
}

// GetWithoutShared returns a copy of the bundle key for language. Missing
// files produce an empty localizer, so lookups fall back to the keys.
func (s *Store) GetWithoutShared(key, lang string) Localizer {
	values, err := s.loadFile(key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("localization not available")
		return Localizer{}
	}
	bundle, ok := values[lang]
	if !ok {
		bundle = values[FallbackLanguage]
	}
	out := make(Localizer, len(bundle))
	for k, v := range bundle {
		out[k] = v
	}
	return out
}

// Get merges the shared bundle under key. Keys of the page bundle win.
func (s *Store) Get(key, lang string) Localizer {
	loc := s.GetWithoutShared(key, lang)
	if key == s.sharedKey {
		return loc
	}
	for k, v := range s.GetWithoutShared(s.sharedKey, lang) {
		if _, ok := loc[k]; !ok {
			loc[k] = v
		}
	}
	return loc
}

func (s *Store) GetUsingRequest(key string, req *http.Request) Localizer {
	return s.Get(key, s.Language(req))
}

func (s *Store) GetUsingRequestWithoutShared(key string, req *http.Request) Localizer {
	return s.GetWithoutShared(key, s.Language(req))
}

// Errors returns the bundle with validation and failure messages.
func (s *Store) Errors(req *http.Request) Localizer {
	return s.GetUsingRequestWithoutShared(s.errorsKey, req)
}

// Language picks the language cookie first and Accept-Language second.
func (s *Store) Language(req *http.Request) string {
	if lang, ok := s.ReadCookie(req); ok {
		return lang
	}
	return s.Negotiate(req.Header.Get("Accept-Language"))
}

// Negotiate matches an Accept-Language header against the supported
// languages.
func (s *Store) Negotiate(accept string) string {
	if accept == "" {
		return FallbackLanguage
	}
	_, index := language.MatchStrings(s.matcher, accept)
	if index < 0 || index >= len(supportedLanguages) {
		return FallbackLanguage
	}
	return supportedLanguages[index]
}

func Supported(lang string) bool {
	for _, supported := range supportedLanguages {
		if lang == supported {
			return true
		}
	}
	return false
}

func (s *Store) ReadCookie(req *http.Request) (string, bool) {
	lang, err := cypher.ReadCookie(req, s.cypher, cookieKey)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			s.log.Warn().Err(err).Msg("cannot read language cookie")
		}
		return "", false
	}
	if !Supported(lang) {
		return "", false
	}
	return lang, true
}

// CreateCookie stores the chosen language. Unsupported languages store the
// fallback.
func (s *Store) CreateCookie(w http.ResponseWriter, lang string) error {
	if !Supported(lang) {
		lang = FallbackLanguage
	}
	err := cypher.SetCookie(w, s.cypher, cypher.CookieOptions{
		Name:     cookieKey,
		Value:    lang,
		MaxAge:   365 * 24 * time.Hour,
		HttpOnly: true,
	})
	if err != nil {
		return fmt.Errorf("cannot create language cookie: %w", err)
	}
	return nil
}
