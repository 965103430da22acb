package cache

// KeySeparator delimits the store scope from the query text in a cache key.
const KeySeparator = "::"

// KeySerializer builds a cache key from a store scope and the literal query
// text. Implementations must never transform the query text itself: the cache
// contract is textual identity, so two differently formatted but semantically
// equal queries are distinct keys.
type KeySerializer interface {
	SerializeKey(scope, query string) string
}

// defaultKeySerializer prefixes the query text with its store scope. The
// scope prefix is what keeps the identifier-keyed store and the list store
// independent when both live in a single backend.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey returns scope + KeySeparator + query. The query text is used
// verbatim, case preserved, whitespace preserved.
func (s *defaultKeySerializer) SerializeKey(scope, query string) string {
	return scope + KeySeparator + query
}
