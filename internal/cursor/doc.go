// Package cursor encodes primary-key values into opaque pagination cursors
// and decodes them back.
//
// A cursor is the unpadded URL-safe base64 encoding of "GPC:" followed by a
// chunk. Scalar chunks carry a one-letter type tag:
//
//	S:<string>       string, verbatim
//	N:<number>       integer or float (floats always carry '.' or 'e')
//	D:<unix millis>  time.Time, decoded in UTC
//	B:<true|false>   bool
//
// Composite keys use a J: chunk holding one scalar chunk per key field, each
// framed as "<byte length>:<chunk>". Length framing keeps values containing
// ':' or digits lossless. The field order is bound when the Codec is
// constructed and is never carried in the payload, so a composite cursor is only meaningful to a codec
// built for the same key shape.
//
// Numbers, dates and length prefixes are only accepted in the form the
// encoder writes them (no '+' sign, no leading zeros), so every tuple has
// exactly one valid cursor.
//
// Cursors are safe to place in URLs and query strings without further escaping.
// Consumers must treat them as opaque.
package cursor
