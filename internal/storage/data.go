package storage

// Persistence

type WriteResult struct {
	packageName string
	path        string
	contentHash string
}

func NewWriteResult(
	packageName string,
	path string,
	contentHash string,
) WriteResult {
	return WriteResult{
		packageName: packageName,
		path:        path,
		contentHash: contentHash,
	}
}

func (w *WriteResult) PackageName() string {
	return w.packageName
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}
