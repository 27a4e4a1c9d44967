package badgerengine

// Key prefixes for stored documents and the token index
const (
	documentRecordPrefix = "docrec"
	documentTokenPrefix  = "doctok"
)

// makeDocumentKey generates a key for a stored document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(documentRecordPrefix + ":" + id)
}

// makeTokenKey generates a composite key for the token index.
// Format: prefix:token\x00documentID
func makeTokenKey(token, id string) []byte {
	partial := makePartialTokenKey(token)
	buf := make([]byte, len(partial)+len(id))
	offset := copy(buf, partial)
	copy(buf[offset:], []byte(id))
	return buf
}

// makePartialTokenKey generates the scan prefix for a single token.
// Format: prefix:token\x00
// The NUL separator keeps one token's scan from matching longer tokens
// that start with it.
func makePartialTokenKey(token string) []byte {
	prefix := documentTokenPrefix + ":"
	totalSize := len(prefix) + len(token) + 1
	buf := make([]byte, totalSize)
	offset := copy(buf, []byte(prefix))
	offset += copy(buf[offset:], []byte(token))
	buf[offset] = 0x00
	return buf
}
