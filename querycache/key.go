package querycache

import (
	"fmt"
	"net/url"
)

// Key identifies one cached resource. Scope separates sessions so that two
// bearer tokens never share an entry.
type Key struct {
	Scope    string
	Endpoint string
	Params   string
}

// NewKey canonicalises params: url.Values.Encode sorts by name.
func NewKey(scope, endpoint string, params url.Values) Key {
	return Key{
		Scope:    scope,
		Endpoint: endpoint,
		Params:   params.Encode(),
	}
}

func (k Key) String() string {
	if k.Params == "" {
		return fmt.Sprintf("%s|%s", k.Scope, k.Endpoint)
	}
	return fmt.Sprintf("%s|%s?%s", k.Scope, k.Endpoint, k.Params)
}

const ListID = "LIST"

// Tag names a resource type and an id inside it. Queries provide tags,
// mutations invalidate them.
type Tag struct {
	Type string
	ID   string
}

func (t Tag) String() string {
	return t.Type + ":" + t.ID
}

func ListTag(typ string) Tag {
	return Tag{Type: typ, ID: ListID}
}

func EntityTag(typ string, id any) Tag {
	return Tag{Type: typ, ID: fmt.Sprint(id)}
}

// ScopedListTag names the list of typ that belongs to one owner, as in
// "LIST_FOR_MERCHANT_12".
func ScopedListTag(typ, owner string, id any) Tag {
	return Tag{Type: typ, ID: fmt.Sprintf("%s_FOR_%s_%v", ListID, owner, id)}
}
