package batch

// Result is the outcome of one bulk write call to the remote store.
type Result struct {
	inserted int
	failed   []string
}

// NewResult creates a bulk write result.
func NewResult(inserted int, failedIDs []string) Result {
	return Result{inserted: inserted, failed: failedIDs}
}

// Inserted returns the number of documents accepted by the store.
func (r Result) Inserted() int { return r.inserted }

// FailedIDs returns ids the store rejected.
func (r Result) FailedIDs() []string { return r.failed }

// OK reports whether no document was rejected.
func (r Result) OK() bool { return len(r.failed) == 0 }

// Split partitions n items into consecutive [start, end) ranges of at most size items.
// A non-positive size yields a single range.
func Split(n, size int) [][2]int {
	if n == 0 {
		return nil
	}
	if size <= 0 || size >= n {
		return [][2]int{{0, n}}
	}
	out := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
