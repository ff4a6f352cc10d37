package db

import (
	"io/ioutil"
	"os"
	"path"
	"strconv"
	"testing"

	"github.com/stretchr/testify/suite"
)

type BookmarksTestSuite struct {
	suite.Suite

	tmpDir string
	dao    *BookmarkDAO
}

func (s *BookmarksTestSuite) SetupTest() {
	var err error
	s.tmpDir, err = ioutil.TempDir("", "subnetcalc_BookmarksTestSuite")
	s.Require().NoError(err)

	s.Require().NoError(InitDB(Config{
		Driver: "sqlite3",
		DSN:    path.Join(s.tmpDir, "test.db"),
	}))
	s.dao, err = NewBookmarkDAO()
	s.Require().NoError(err)
}

func (s *BookmarksTestSuite) TearDownTest() {
	s.NoError(s.dao.Close())
	_ = os.RemoveAll(s.tmpDir)
}

func (s *BookmarksTestSuite) TestAddGet() {
	office := &Bookmark{Name: "office", Query: "network=10.0.0.0&mask=8"}
	s.Require().NoError(s.dao.Add(office))
	s.NotEmpty(office.Slug)
	s.Require().NoError(s.dao.Add(&Bookmark{Name: "lab", Query: "mask=24"}))
	s.Error(s.dao.Add(&Bookmark{Name: "office"}))
	s.Error(s.dao.Add(&Bookmark{}))

	_, err := s.dao.Get("not_exists")
	s.Error(err)

	b, err := s.dao.Get("office")
	s.Require().NoError(err)
	s.Equal("network=10.0.0.0&mask=8", b.Query)
	s.Equal(office.Slug, b.Slug)

	b, err = s.dao.GetBySlug(office.Slug)
	s.Require().NoError(err)
	s.Equal("office", b.Name)
}

func (s *BookmarksTestSuite) TestList() {
	for i := 9; i >= 0; i-- {
		s.Require().NoError(
			s.dao.Add(&Bookmark{Name: "net" + strconv.Itoa(i)}))
	}
	bookmarks, err := s.dao.List()
	if s.NoError(err) && s.Len(bookmarks, 10) {
		for i := 0; i < 10; i++ {
			s.Equal("net"+strconv.Itoa(i), bookmarks[i].Name)
		}
	}
}

func (s *BookmarksTestSuite) TestUpdateDelete() {
	s.Require().NoError(s.dao.Add(&Bookmark{Name: "a", Query: "mask=24"}))
	b, err := s.dao.Get("a")
	s.Require().NoError(err)
	b.Query = "mask=16"
	s.NoError(s.dao.Update(b))

	b, err = s.dao.Get("a")
	s.Require().NoError(err)
	s.Equal("mask=16", b.Query)

	s.NoError(s.dao.Delete("a"))
	s.Error(s.dao.Delete("a"))
	s.False(s.dao.CheckExists("a"))
}

func TestBookmarksTestSuite(t *testing.T) {
	if CheckDriver("sqlite3") {
		suite.Run(t, new(BookmarksTestSuite))
	} else {
		t.Skip("sqlite3 is not enabled")
	}
}
