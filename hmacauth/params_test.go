package hmacauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthParamsMap(t *testing.T) {
	t.Run("headers always present, version and signature optional", func(t *testing.T) {
		m := AuthParams{ID: "i", Nonce: "n", Realm: "r"}.Map()

		assert.Equal(t, map[string]string{"id": "i", "nonce": "n", "realm": "r", "headers": ""}, m)
	})

	t.Run("extra parameters", func(t *testing.T) {
		p := AuthParams{
			ID:        "i",
			Version:   "2.0",
			Headers:   []string{"X-A", "X-B"},
			Signature: "c2ln",
			Extra:     map[string]string{"scope": "read"},
		}

		m := p.Map()
		assert.Equal(t, "X-A;X-B", m["headers"])
		assert.Equal(t, "read", m["scope"])
		assert.Equal(t, "2.0", m["version"])
		assert.Equal(t, "c2ln", m["signature"])

		assert.Equal(t, p, ParamsFromMap(m))
	})

	t.Run("omitted headers", func(t *testing.T) {
		m := AuthParams{ID: "i", OmitHeaders: true}.Map()
		assert.NotContains(t, m, "headers")

		m = AuthParams{ID: "i", Headers: []string{"X-A"}, OmitHeaders: true}.Map()
		assert.Equal(t, "X-A", m["headers"])
	})

	t.Run("header list drops blanks", func(t *testing.T) {
		p := ParamsFromMap(map[string]string{"headers": " X-A ;; X-B;"})
		assert.Equal(t, []string{"X-A", "X-B"}, p.Headers)
	})
}

func TestUnroll(t *testing.T) {
	p := AuthParams{
		ID:        "efdde334",
		Nonce:     "n 1",
		Realm:     "Pipet service",
		Version:   "2.0",
		Headers:   []string{"X-A", "X-B"},
		Signature: "ab+c/d=",
	}

	t.Run("quoted comma separated", func(t *testing.T) {
		got := Unroll(p, UnrollOptions{Quote: true})
		want := `headers="X-A%3BX-B",id="efdde334",nonce="n%201",realm="Pipet%20service",signature="ab+c/d=",version="2.0"`
		assert.Equal(t, want, got)
	})

	t.Run("signable form", func(t *testing.T) {
		got := Unroll(p, UnrollOptions{ExcludeSignature: true, Separator: "&"})
		want := `headers=X-A%3BX-B&id=efdde334&nonce=n%201&realm=Pipet%20service&version=2.0`
		assert.Equal(t, want, got)
	})

	t.Run("no safe characters", func(t *testing.T) {
		got := Unroll(AuthParams{ID: "a/b:c@d~e-f_g.h"}, UnrollOptions{Separator: "&"})
		assert.Contains(t, got, "id=a%2Fb%3Ac%40d~e-f_g.h")
	})
}

func TestParseV2AuthHeader(t *testing.T) {
	t.Run("parses every pair", func(t *testing.T) {
		header := `acquia-http-hmac headers="X-A%3BX-B",id="efdde334",nonce="n%201",realm="Pipet%20service",signature="ab+c/d=",version="2.0"`

		got := ParseV2AuthHeader(header)
		assert.Equal(t, AuthParams{
			ID:        "efdde334",
			Nonce:     "n 1",
			Realm:     "Pipet service",
			Version:   "2.0",
			Headers:   []string{"X-A", "X-B"},
			Signature: "ab+c/d=",
		}, got)
	})

	t.Run("order and whitespace do not matter", func(t *testing.T) {
		got := ParseV2AuthHeader(`acquia-http-hmac version="2.0", realm="r" ,id="i"`)
		assert.Equal(t, AuthParams{ID: "i", Realm: "r", Version: "2.0", OmitHeaders: true}, got)
	})

	t.Run("absent headers parameter stays absent", func(t *testing.T) {
		got := ParseV2AuthHeader(`acquia-http-hmac id="i",nonce="n",realm="r",version="2.0"`)

		assert.Empty(t, got.Headers)
		assert.Equal(t, "id=i&nonce=n&realm=r&version=2.0", Unroll(got, UnrollOptions{Separator: "&"}))
	})

	t.Run("empty headers parameter stays present", func(t *testing.T) {
		got := ParseV2AuthHeader(`acquia-http-hmac headers="",id="i",nonce="n",realm="r"`)

		assert.False(t, got.OmitHeaders)
		assert.Equal(t, "headers=&id=i&nonce=n&realm=r", Unroll(got, UnrollOptions{Separator: "&"}))
	})

	t.Run("undecodable values are kept", func(t *testing.T) {
		got := ParseV2AuthHeader(`acquia-http-hmac id="100%"`)
		assert.Equal(t, "100%", got.ID)
	})

	t.Run("no pairs", func(t *testing.T) {
		assert.True(t, ParseV2AuthHeader("Acquia id:sig").IsZero())
	})

	t.Run("unroll parse unroll is stable", func(t *testing.T) {
		inputs := []AuthParams{
			{ID: "i", Nonce: "n", Realm: "r"},
			{ID: "a b", Nonce: "ü", Realm: "r,\"x\"", Version: "2.0", Headers: []string{"X-Custom"}, Signature: "c2ln"},
			{ID: "i", Nonce: "n", Realm: "r", Extra: map[string]string{"scope": "a&b=c"}},
		}

		for _, p := range inputs {
			header := v2Scheme + " " + Unroll(p, UnrollOptions{Quote: true})
			parsed := ParseV2AuthHeader(header)

			assert.Equal(t, p, parsed)
			assert.Equal(t, header, v2Scheme+" "+Unroll(parsed, UnrollOptions{Quote: true}))
		}
	})
}
