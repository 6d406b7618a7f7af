package twink

import "net/url"

// OpenLink is a room reference carried in a page URL's query string: an
// "open" parameter with the room id and an optional "label".
type OpenLink struct {
	Room  string
	Label string
}

// ParseOpenLink extracts an open-room deep link from a query string. The
// label defaults to "Chat" when absent, matching how a linked room renders
// before its real label is known.
func ParseOpenLink(query url.Values) (OpenLink, bool) {
	if !query.Has("open") {
		return OpenLink{}, false
	}
	link := OpenLink{
		Room:  query.Get("open"),
		Label: query.Get("label"),
	}
	if link.Label == "" {
		link.Label = "Chat"
	}
	return link, true
}

// StripOpenLink removes the deep-link parameters from a URL so the link is
// single-shot: a reload after opening must not re-open the room.
func StripOpenLink(u *url.URL) {
	q := u.Query()
	q.Del("open")
	q.Del("label")
	u.RawQuery = q.Encode()
}
