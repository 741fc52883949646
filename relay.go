package laminar

import (
	"io"

	pool "github.com/libp2p/go-buffer-pool"
	"github.com/pkg/errors"
)

// Copy shuttles bytes from src to dst until src reports io.EOF,
// returning the total transferred. It is capability-gated: src must be
// readable and dst writable in the synchronous world, which Classify
// verifies up front so misuse fails before any bytes move.
func Copy(dst, src any) (int64, error) {
	if !IsSyncReadStream(src) {
		return 0, errors.Errorf("copy source %T is not synchronously readable", src)
	}
	if !IsSyncWriteStream(dst) {
		return 0, errors.Errorf("copy destination %T is not synchronously writable", dst)
	}
	r := src.(Reader)
	w := dst.(Writer)

	buf := pool.Get(32 * 1024)
	defer pool.Put(buf)

	var total int64
	for {
		n, rerr := r.ReadSome(buf)
		if n > 0 {
			if _, werr := WriteFull(w, buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}
