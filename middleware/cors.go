package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/deltegui/bankconsole"
)

const CorsAny = "*"

type CorsOptions struct {
	AllowOrigin  string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       int
}

// CorsDefault allows any origin to read the JSON views of the lists.
func CorsDefault() CorsOptions {
	return CorsOptions{
		AllowOrigin:  CorsAny,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{CorsAny},
		MaxAge:       864000,
	}
}

func allowsAll(list []string) bool {
	return len(list) == 0 || (len(list) == 1 && list[0] == CorsAny)
}

func (opt CorsOptions) originAllowed(origin string) bool {
	return opt.AllowOrigin == "" || opt.AllowOrigin == CorsAny || origin == opt.AllowOrigin
}

func (opt CorsOptions) methodAllowed(method string) bool {
	if allowsAll(opt.AllowMethods) {
		return true
	}
	for _, allowed := range opt.AllowMethods {
		if strings.EqualFold(allowed, method) {
			return true
		}
	}
	return false
}

func (opt CorsOptions) headersAllowed(headers []string) bool {
	if allowsAll(opt.AllowHeaders) {
		return true
	}
next:
	for _, rh := range headers {
		rh = strings.TrimSpace(rh)
		for _, ah := range opt.AllowHeaders {
			if strings.EqualFold(rh, ah) {
				continue next
			}
		}
		return false
	}
	return true
}

func (opt CorsOptions) allowOriginValue(origin string) string {
	if opt.AllowOrigin == "" {
		return CorsAny
	}
	if opt.AllowOrigin == CorsAny && origin != "" {
		return origin
	}
	return opt.AllowOrigin
}

// Cors answers preflight requests and adds the allow-origin header to cross
// origin responses. Requests without an Origin header pass untouched.
func Cors(opt CorsOptions) bankconsole.Middleware {
	return func(next bankconsole.Handler) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			origin := ctx.Req.Header.Get("Origin")
			if origin == "" {
				return next(ctx)
			}
			if !opt.originAllowed(origin) {
				return ctx.Forbidden("Origin not allowed by CORS")
			}
			header := ctx.Res.Header()
			header.Set("Access-Control-Allow-Origin", opt.allowOriginValue(origin))
			header.Add("Vary", "Origin")
			header.Set("Access-Control-Allow-Credentials", "true")

			if ctx.Req.Method == http.MethodOptions {
				header.Set("Access-Control-Allow-Methods", strings.Join(opt.AllowMethods, ", "))
				header.Set("Access-Control-Allow-Headers", strings.Join(opt.AllowHeaders, ", "))
				header.Set("Access-Control-Max-Age", strconv.Itoa(opt.MaxAge))

				reqMethod := ctx.Req.Header.Get("Access-Control-Request-Method")
				if reqMethod != "" && !opt.methodAllowed(reqMethod) {
					return ctx.Forbidden("Method not allowed by CORS preflight: %s", reqMethod)
				}
				reqHeaders := ctx.Req.Header.Get("Access-Control-Request-Headers")
				if reqHeaders != "" && !opt.headersAllowed(strings.Split(reqHeaders, ",")) {
					return ctx.Forbidden("Request headers not allowed")
				}
				return ctx.NoContent()
			}
			if !opt.methodAllowed(ctx.Req.Method) {
				return ctx.Forbidden("Method not allowed by CORS: %s", ctx.Req.Method)
			}
			return next(ctx)
		}
	}
}
