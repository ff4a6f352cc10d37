package tools

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/richardtsai/subnetcalc/db"
	"github.com/richardtsai/subnetcalc/lib"
)

func init() {
	allTools = append(allTools, &bookmarksTool{})
}

type bookmarksTool struct {
	consoleTool
	dao      *db.BookmarkDAO
	linkBase string
}

func (bookmarksTool) Name() string {
	return "bookmarks"
}

func (bookmarksTool) Description() string {
	return "Manage saved bookmarks"
}

func (t *bookmarksTool) Run(args []string) {
	fs := flag.NewFlagSet("bookmarks", flag.ExitOnError)
	configFile := fs.String("c", "", "subnetcalc configuration file")
	if fs.Parse(args[1:]) == flag.ErrHelp {
		fs.Usage()
	} else if *configFile == "" {
		_, _ = fmt.Fprintf(
			os.Stderr, "Error: a configuration file is needed\n\n")
		fs.Usage()
		os.Exit(0)
	}

	config, err := loadConfig(*configFile)
	if err != nil {
		panic(err)
	} else if config.DB == nil {
		panic("'db' is not specified in the configuration file")
	} else if t.dao, err = db.NewBookmarkDAO(); err != nil {
		panic(err)
	}
	defer t.dao.Close() // nolint: errcheck
	t.linkBase = config.Server.Link()

	if err := t.setupConsole("bookmarks> "); err != nil {
		panic(err)
	}
	defer t.teardownConsole()
	t.addCmd("add", "add NAME LINK_OR_QUERY", t.addBookmark)
	t.addCmd("delete", "delete NAME", t.deleteBookmark)
	t.addCmd("list", "list", t.listBookmarks)
	t.addCmd("show", "show NAME", t.showBookmark)
	t.addCmd("rename", "rename NAME NEW_NAME", t.renameBookmark)
	t.addCmd("export", "export FILE", t.exportBookmarks)
	t.addCmd("import", "import FILE", t.importBookmarks)
	t.runLoop()
}

func (t *bookmarksTool) addBookmark(term *terminal.Terminal, args []string) bool {
	if len(args) != 2 {
		_, _ = fmt.Fprintln(term, "exactly two arguments are required")
		return true
	}
	s, err := lib.DecodeBookmark(args[1], nil)
	if err != nil {
		_, _ = fmt.Fprintf(term, "invalid bookmark: %v\n", err)
		return true
	}
	for _, p := range s.Problems {
		_, _ = fmt.Fprintf(term, "ignored: %v\n", p)
	}

	b := db.Bookmark{Name: args[0], Query: lib.EncodeBookmark(s)}
	if err = t.dao.Add(&b); err != nil {
		_, _ = fmt.Fprintf(term, "failed to add bookmark '%s': %v\n", b.Name, err)
	} else {
		_, _ = fmt.Fprintf(term, "bookmark '%s' added as %s\n", b.Name, b.Slug)
	}
	return true
}

func (t *bookmarksTool) deleteBookmark(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	if err := t.dao.Delete(args[0]); err != nil {
		_, _ = fmt.Fprintf(term, "failed to delete bookmark '%s': %v\n", args[0], err)
	} else {
		_, _ = fmt.Fprintf(term, "bookmark '%s' deleted\n", args[0])
	}
	return true
}

func (t *bookmarksTool) listBookmarks(term *terminal.Terminal, args []string) bool {
	if len(args) != 0 {
		_, _ = fmt.Fprintln(term, "'list' doesn't take any argument")
		return true
	}
	bookmarks, err := t.dao.List()
	if err != nil {
		_, _ = fmt.Fprintf(term, "failed to list bookmarks: %v\n", err)
		return true
	}
	w := tabwriter.NewWriter(term, 4, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "Name\tNetwork\tSlug\tUpdated At")
	for _, b := range bookmarks {
		network := "?"
		if s, err := lib.DecodeBookmark(b.Query, nil); err == nil {
			network = fmt.Sprintf("%s/%d", s.Network, s.Mask)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			b.Name, network, b.Slug, b.UpdatedAt.Format(time.RFC822))
	}
	_ = w.Flush()
	return true
}

func (t *bookmarksTool) showBookmark(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	b, err := t.dao.Get(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	s, err := lib.DecodeBookmark(b.Query, nil)
	if err != nil {
		_, _ = fmt.Fprintf(term, "stored bookmark is broken: %v\n", err)
		return true
	}
	rows, _ := lib.BuildRows(s)
	_, _ = fmt.Fprintln(term, lib.BookmarkLink(t.linkBase, s))
	printRows(term, rows, s.Columns)
	return true
}

func (t *bookmarksTool) renameBookmark(term *terminal.Terminal, args []string) bool {
	if len(args) != 2 {
		_, _ = fmt.Fprintln(term, "exactly two arguments are required")
		return true
	}
	if t.dao.CheckExists(args[1]) {
		_, _ = fmt.Fprintf(term, "bookmark '%s' already exists\n", args[1])
		return true
	}
	b, err := t.dao.Get(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	b.Name = args[1]
	if err = t.dao.Update(b); err != nil {
		_, _ = fmt.Fprintf(term, "failed to rename bookmark: %v\n", err)
	} else {
		_, _ = fmt.Fprintln(term, "bookmark renamed")
	}
	return true
}

func (t *bookmarksTool) exportBookmarks(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	bookmarks, err := t.dao.List()
	if err != nil {
		_, _ = fmt.Fprintf(term, "failed to list bookmarks: %v\n", err)
		return true
	}
	f, err := os.Create(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	defer f.Close() // nolint: errcheck
	if err = db.WriteArchive(f, bookmarks); err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
	} else {
		_, _ = fmt.Fprintf(term, "%d bookmarks exported\n", len(bookmarks))
	}
	return true
}

func (t *bookmarksTool) importBookmarks(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	f, err := os.Open(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	defer f.Close() // nolint: errcheck
	bookmarks, err := db.ReadArchive(f)
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}

	imported := 0
	for _, b := range bookmarks {
		if t.dao.CheckExists(b.Name) {
			_, _ = fmt.Fprintf(term, "skipped '%s': already exists\n", b.Name)
			continue
		}
		if err = t.dao.Add(b); err != nil {
			_, _ = fmt.Fprintf(term, "skipped '%s': %v\n", b.Name, err)
			continue
		}
		imported++
	}
	_, _ = fmt.Fprintf(term, "%d of %d bookmarks imported\n",
		imported, len(bookmarks))
	return true
}
