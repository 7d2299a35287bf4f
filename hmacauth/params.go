package hmacauth

import (
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// Auth parameter names.
const (
	ParamID        = "id"
	ParamNonce     = "nonce"
	ParamRealm     = "realm"
	ParamVersion   = "version"
	ParamHeaders   = "headers"
	ParamSignature = "signature"
)

// AuthParams are the parameters carried in an Authorization header.
type AuthParams struct {
	// ID identifies the key pair.
	ID string

	// Nonce is a per-request random token. Required by v2.
	Nonce string

	// Realm is the provider namespace. Required by v2.
	Realm string

	// Version is the protocol version, e.g. "2.0". Omitted when empty.
	Version string

	// Headers lists additional request headers covered by the signature.
	Headers []string

	// OmitHeaders drops the headers parameter while Headers is empty. It
	// is set when parsing a header that carried no headers parameter, so
	// the signable matches what the client signed.
	OmitHeaders bool

	// Signature is the computed signature. Omitted when empty.
	Signature string

	// Extra holds parameters not known to this package. They are signed
	// and transmitted like any other parameter.
	Extra map[string]string
}

// Map flattens p. The headers parameter is joined with ";" and is
// present unless OmitHeaders is set and Headers is empty.
func (p AuthParams) Map() map[string]string {
	m := make(map[string]string, len(p.Extra)+6)
	maps.Copy(m, p.Extra)

	m[ParamID] = p.ID
	m[ParamNonce] = p.Nonce
	m[ParamRealm] = p.Realm

	if !p.OmitHeaders || len(p.Headers) > 0 {
		m[ParamHeaders] = strings.Join(p.Headers, ";")
	}

	if p.Version != "" {
		m[ParamVersion] = p.Version
	}

	if p.Signature != "" {
		m[ParamSignature] = p.Signature
	}

	return m
}

// ParamsFromMap is the inverse of Map.
func ParamsFromMap(m map[string]string) AuthParams {
	var p AuthParams

	_, hasHeaders := m[ParamHeaders]
	p.OmitHeaders = !hasHeaders

	for k, v := range m {
		switch k {
		case ParamID:
			p.ID = v
		case ParamNonce:
			p.Nonce = v
		case ParamRealm:
			p.Realm = v
		case ParamVersion:
			p.Version = v
		case ParamHeaders:
			p.Headers = splitHeaderList(v)
		case ParamSignature:
			p.Signature = v
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]string)
			}

			p.Extra[k] = v
		}
	}

	return p
}

// IsZero reports whether p carries no parameters at all.
func (p AuthParams) IsZero() bool {
	return p.ID == "" && p.Nonce == "" && p.Realm == "" && p.Version == "" &&
		len(p.Headers) == 0 && p.Signature == "" && len(p.Extra) == 0
}

// splitHeaderList splits a ";"-joined header list, dropping blanks.
func splitHeaderList(s string) []string {
	var out []string

	for name := range strings.SplitSeq(s, ";") {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}

	return out
}

// UnrollOptions controls how Unroll renders parameters.
type UnrollOptions struct {
	// ExcludeSignature omits the signature parameter.
	ExcludeSignature bool

	// Separator joins the key/value pairs. Defaults to ",".
	Separator string

	// Quote wraps each value in double quotes.
	Quote bool
}

// Unroll renders p as key=value pairs sorted by key. Every value except
// the signature is percent-encoded with no safe characters; the signature
// is inserted verbatim.
func Unroll(p AuthParams, opts UnrollOptions) string {
	sep := opts.Separator
	if sep == "" {
		sep = ","
	}

	m := p.Map()
	if opts.ExcludeSignature {
		delete(m, ParamSignature)
	}

	keys := slices.Sorted(maps.Keys(m))
	parts := make([]string, 0, len(keys))

	for _, k := range keys {
		v := m[k]
		if k != ParamSignature {
			v = escape(v)
		}

		if opts.Quote {
			v = `"` + v + `"`
		}

		parts = append(parts, k+"="+v)
	}

	return strings.Join(parts, sep)
}

// escape percent-encodes everything outside the unreserved set, with
// spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

var v2ParamPattern = regexp.MustCompile(`([A-Za-z0-9_-]+)="([^"]*)"`)

// ParseV2AuthHeader extracts every key="value" pair from a v2
// Authorization header. Values other than the signature are
// percent-decoded; values that fail to decode are kept as-is.
func ParseV2AuthHeader(header string) AuthParams {
	m := make(map[string]string)

	for _, match := range v2ParamPattern.FindAllStringSubmatch(header, -1) {
		k, v := match[1], match[2]
		if k != ParamSignature {
			if decoded, err := url.PathUnescape(v); err == nil {
				v = decoded
			}
		}

		m[k] = v
	}

	return ParamsFromMap(m)
}
