package db

import (
	"io"
	"io/ioutil"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const archiveVersion = 1

type archive struct {
	Version   int            `yaml:"version"`
	Bookmarks []archiveEntry `yaml:"bookmarks"`
}

type archiveEntry struct {
	Slug  string `yaml:"slug"`
	Name  string `yaml:"name"`
	Query string `yaml:"query"`
}

// WriteArchive writes bookmarks as snappy-framed YAML. Database ids and
// timestamps are not written.
func WriteArchive(w io.Writer, bookmarks []*Bookmark) error {
	a := archive{Version: archiveVersion}
	for _, b := range bookmarks {
		a.Bookmarks = append(a.Bookmarks,
			archiveEntry{Slug: b.Slug, Name: b.Name, Query: b.Query})
	}
	data, err := yaml.Marshal(&a)
	if err != nil {
		return errors.WithStack(err)
	}
	sw := snappy.NewBufferedWriter(w)
	if _, err = sw.Write(data); err != nil {
		return errors.Wrap(err, "failed to write archive")
	}
	return errors.Wrap(sw.Close(), "failed to write archive")
}

// ReadArchive reads bookmarks written by WriteArchive.
func ReadArchive(r io.Reader) ([]*Bookmark, error) {
	data, err := ioutil.ReadAll(snappy.NewReader(r))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read archive")
	}
	var a archive
	if err = yaml.UnmarshalStrict(data, &a); err != nil {
		return nil, errors.Wrap(err, "malformed archive")
	}
	if a.Version != archiveVersion {
		return nil, errors.Errorf("unsupported archive version %d", a.Version)
	}
	bookmarks := make([]*Bookmark, 0, len(a.Bookmarks))
	for _, e := range a.Bookmarks {
		bookmarks = append(bookmarks,
			&Bookmark{Slug: e.Slug, Name: e.Name, Query: e.Query})
	}
	return bookmarks, nil
}
