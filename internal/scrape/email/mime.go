package email

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// htmlBody extracts the HTML part of an RFC822 message, walking nested
// multiparts and decoding transfer encodings. Falls back to the plain
// body when no HTML part exists.
func htmlBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}

	body, _ := io.ReadAll(io.LimitReader(msg.Body, 10<<20))
	plain, html := textParts(msg.Header, body)
	if html != "" {
		return html
	}
	return plain
}

func textParts(h mail.Header, body []byte) (plain, html string) {
	ct := h.Get("Content-Type")
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return string(decodeCTE(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeCTE(body, cte)), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)

		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			partCTE := strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))
			pMedia, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
			pMedia = strings.ToLower(pMedia)

			b, _ := io.ReadAll(io.LimitReader(p, 10<<20))
			b = decodeCTE(b, partCTE)

			if strings.HasPrefix(pMedia, "multipart/") {
				pl, ht := textParts(mail.Header(p.Header), b)
				if len(pl) > len(plain) {
					plain = pl
				}
				if len(ht) > len(html) {
					html = ht
				}
				continue
			}

			switch {
			case strings.HasPrefix(pMedia, "text/plain"):
				if len(b) > len(plain) {
					plain = string(b)
				}
			case strings.HasPrefix(pMedia, "text/html"):
				if len(b) > len(html) {
					html = string(b)
				}
			}
		}
		return plain, html
	}

	s := decodeCTE(body, cte)
	if strings.HasPrefix(mediaType, "text/html") {
		return "", string(s)
	}
	return string(s), ""
}

func decodeCTE(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 10<<20))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 10<<20))
		return out
	default:
		return b
	}
}

func decodeSubject(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	dec := new(mime.WordDecoder)
	out, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}
