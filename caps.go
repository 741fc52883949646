package laminar

// Caps is the capability classification of a stream value: four
// independent axes, each true when the value exposes the corresponding
// operation. It is a fact about the type, computed by type assertion
// once and used to gate which generic algorithms are legal.
type Caps struct {
	SyncRead   bool
	SyncWrite  bool
	AsyncRead  bool
	AsyncWrite bool
}

// Classify computes the capability classification of s.
func Classify(s any) Caps {
	var c Caps
	_, c.SyncRead = s.(Reader)
	_, c.SyncWrite = s.(Writer)
	_, c.AsyncRead = s.(AsyncReader)
	_, c.AsyncWrite = s.(AsyncWriter)
	return c
}

// Readable reports whether s can be read at all, in either world.
func (c Caps) Readable() bool { return c.SyncRead || c.AsyncRead }

// Writable reports whether s can be written at all, in either world.
func (c Caps) Writable() bool { return c.SyncWrite || c.AsyncWrite }

// IsSyncReadStream reports whether s exposes synchronous reads.
func IsSyncReadStream(s any) bool {
	_, ok := s.(Reader)
	return ok
}

// IsSyncWriteStream reports whether s exposes synchronous writes.
func IsSyncWriteStream(s any) bool {
	_, ok := s.(Writer)
	return ok
}

// IsAsyncReadStream reports whether s exposes asynchronous reads.
func IsAsyncReadStream(s any) bool {
	_, ok := s.(AsyncReader)
	return ok
}

// IsAsyncWriteStream reports whether s exposes asynchronous writes.
func IsAsyncWriteStream(s any) bool {
	_, ok := s.(AsyncWriter)
	return ok
}
