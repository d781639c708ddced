package gmailtest

import "encoding/base64"

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

// Encode base64url-encodes s the way the Gmail API encodes body data.
func Encode(s string) string {
	return encode(s)
}

// DecodeRaw decodes the Raw field of a sent message.
func DecodeRaw(raw string) (string, error) {
	b, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
