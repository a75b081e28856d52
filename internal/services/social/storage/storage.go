// Package storage defines the social ledger records and their key layout.
package storage

// Address is an opaque account identifier supplied by the host.
type Address string

// String returns the address text.
func (a Address) String() string {
	return string(a)
}

// UserInfo stores one user's mutable profile.
type UserInfo struct {
	Name      string `cbor:"name" json:"name"`
	Bio       string `cbor:"bio" json:"bio"`
	AvatarURI string `cbor:"avatar_uri" json:"avatar_uri"`
}

// Post stores one immutable post. ID is the global post number.
type Post struct {
	ID         uint32  `cbor:"id" json:"id"`
	Author     Address `cbor:"author" json:"author"`
	CreateTime uint64  `cbor:"create_time" json:"create_time"`
	Text       string  `cbor:"text" json:"text"`
	ContentURI string  `cbor:"content_uri" json:"content_uri"`
}

// Comment stores one immutable comment. ID is local to its post.
type Comment struct {
	ID         uint32  `cbor:"id" json:"id"`
	Author     Address `cbor:"author" json:"author"`
	CreateTime uint64  `cbor:"create_time" json:"create_time"`
	Text       string  `cbor:"text" json:"text"`
}
