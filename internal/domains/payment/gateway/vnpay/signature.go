package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Sign computes the vnp_SecureHash for a parameter set.
//
// Gateway rules: drop vnp_SecureHash/vnp_SecureHashType and empty
// values, sort keys ascending, join as k=v with &, HMAC-SHA512 over the
// raw (decoded) string, uppercase hex.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" || value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := params[key]
		// Callback values may arrive still URL-encoded.
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		parts = append(parts, key+"="+value)
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "&")))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// Verify checks a callback's vnp_SecureHash against a recomputed one.
func Verify(params map[string]string, secret string) bool {
	received := params["vnp_SecureHash"]
	if received == "" {
		return false
	}
	return hmac.Equal(
		[]byte(strings.ToUpper(received)),
		[]byte(Sign(params, secret)),
	)
}

// BuildPaymentURL assembles the redirect URL. Unlike callback
// verification, the redirect hash is computed over the URL-encoded
// query string, PHP urlencode style (spaces become +).
func BuildPaymentURL(baseURL string, params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" || value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, phpURLEncode(key)+"="+phpURLEncode(params[key]))
	}
	query := strings.Join(parts, "&")

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(query))
	secureHash := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	return baseURL + "?" + query + "&vnp_SecureHash=" + secureHash
}

// phpURLEncode matches PHP's urlencode: spaces become '+', everything
// else like Go's QueryEscape. The gateway canonicalizes this way.
func phpURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%20", "+")
}
