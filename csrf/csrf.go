// Package csrf issues and checks the tokens embedded in every console form.
package csrf

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deltegui/bankconsole/clock"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/cypher"
)

const (
	HeaderName = "X-Csrf-Token"
	FieldName  = "csrf_token"
	separator  = "//00//"
)

// Csrf tokens are an encrypted nonce plus the issue time. They are valid
// until expires has elapsed.
type Csrf struct {
	cypher  core.Cypher
	expires time.Duration
	clock   clock.Clock
	log     zerolog.Logger
}

func New(expires time.Duration, cy core.Cypher, clk clock.Clock, logger zerolog.Logger) *Csrf {
	if clk == nil {
		clk = clock.Real()
	}
	return &Csrf{
		cypher:  cy,
		expires: expires,
		clock:   clk,
		log:     logger.With().Str("component", "csrf").Logger(),
	}
}

func (csrf *Csrf) Generate() (string, error) {
	raw := fmt.Sprintf("%s%s%d", uuid.NewString(), separator, csrf.clock.Now().Unix())
	token, err := cypher.EncodeCookie(csrf.cypher, raw)
	if err != nil {
		return "", fmt.Errorf("cannot generate csrf token: %w", err)
	}
	return token, nil
}

func (csrf *Csrf) Check(token string) bool {
	raw, err := cypher.DecodeCookie(csrf.cypher, token)
	if err != nil {
		csrf.log.Warn().Err(err).Msg("cannot decrypt csrf token")
		return false
	}
	_, issuedAt, found := strings.Cut(string(raw), separator)
	if !found {
		csrf.log.Warn().Msg("malformed csrf token: not enough parts")
		return false
	}
	unix, err := strconv.ParseInt(issuedAt, 10, 64)
	if err != nil {
		csrf.log.Warn().Msg("malformed csrf token: issue time is not an integer")
		return false
	}
	if csrf.clock.Now().After(time.Unix(unix, 0).Add(csrf.expires)) {
		csrf.log.Warn().Msg("expired csrf token")
		return false
	}
	return true
}

// CheckRequest reads the token from the header or, failing that, from the
// form field.
func (csrf *Csrf) CheckRequest(req *http.Request) bool {
	token := req.Header.Get(HeaderName)
	if token == "" {
		if err := req.ParseForm(); err != nil {
			csrf.log.Warn().Err(err).Msg("cannot parse form looking for csrf token")
			return false
		}
		token = req.Form.Get(FieldName)
	}
	if token == "" {
		csrf.log.Warn().Str("path", req.URL.Path).Msg("csrf token not found")
		return false
	}
	return csrf.Check(token)
}
