package document

import "net/url"

// Document is one package's metadata as served by the index.
// The body is opaque: it is validated as JSON but never re-serialized,
// so consumers see exactly the bytes the index produced.
type Document struct {
	name     string
	body     []byte
	fetchURL url.URL
}

func NewDocument(name string, body []byte, fetchURL url.URL) Document {
	return Document{
		name:     name,
		body:     body,
		fetchURL: fetchURL,
	}
}

func (d *Document) Name() string {
	return d.name
}

func (d *Document) Body() []byte {
	return d.body
}

func (d *Document) FetchURL() url.URL {
	return d.fetchURL
}
