package tools

import (
	"bytes"
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/richardtsai/subnetcalc/lib"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	allTools = append(allTools, &inspectTool{})
}

type renderReply struct {
	Link     string    `json:"link"`
	Query    string    `json:"query"`
	JoinSpan int       `json:"joinSpan"`
	Rows     []lib.Row `json:"rows"`
	Name     string    `json:"name"`
	Columns  []string  `json:"columns"`
}

func (r *renderReply) visible() lib.Columns {
	var cols lib.Columns
	for _, name := range r.Columns {
		_ = cols.Set(name, true)
	}
	return cols
}

type bookmarkReply struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Query string `json:"query"`
	Link  string `json:"link"`
}

type inspectTool struct {
	consoleTool
	addr   string
	client http.Client
}

func (inspectTool) Name() string {
	return "inspect"
}

func (inspectTool) Description() string {
	return "Query a running subnetcalc service"
}

func (t *inspectTool) Run(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.StringVar(&t.addr, "addr", "http://localhost:8080",
		"base address of the service.")
	cert := fs.String("cert", "", "optional TLS client certificate.")
	key := fs.String("key", "", "private key file for the client certificate.")
	_ = fs.Parse(args[1:])
	if t.addr == "" {
		panic("-addr must be specified")
	}
	if (*cert == "") != (*key == "") {
		panic("-cert must be used with -key")
	}
	t.addr = strings.TrimRight(t.addr, "/")
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if *cert != "" {
		if c, err := tls.LoadX509KeyPair(*cert, *key); err != nil {
			panic("Failed to load certificate: " + err.Error())
		} else {
			transport.TLSClientConfig = &tls.Config{
				Certificates: []tls.Certificate{c},
			}
		}
	}
	t.client.Transport = transport

	if err := t.setupConsole("inspect> "); err != nil {
		panic(err)
	}
	t.addCmd("render", "render [LINK_OR_QUERY]", t.render)
	t.addCmd("locate", "locate ADDRESS [LINK_OR_QUERY]", t.locate)
	t.addCmd("ls", "ls", t.ls)
	t.addCmd("show", "show NAME", t.show)
	t.addCmd("save", "save NAME LINK_OR_QUERY", t.save)
	t.addCmd("rm", "rm NAME", t.rm)
	defer t.teardownConsole()
	t.runLoop()
}

func (t *inspectTool) render(term *terminal.Terminal, args []string) bool {
	if len(args) > 1 {
		fmt.Fprintln(term, "'render' takes at most one argument")
		return true
	}
	query := ""
	if len(args) == 1 {
		query = queryOf(args[0])
	}
	var reply renderReply
	if err := t.request(
		http.MethodGet, "/api/render?"+query, nil, &reply); err != nil {
		fmt.Fprintln(term, err.Error())
		return true
	}
	if reply.Name != "" {
		fmt.Fprintf(term, "%s\n", reply.Name)
	}
	fmt.Fprintln(term, reply.Link)
	printRows(term, reply.Rows, reply.visible())
	return true
}

func (t *inspectTool) locate(term *terminal.Terminal, args []string) bool {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(term, "'locate' takes one or two arguments")
		return true
	}
	uri := "/api/locate?addr=" + url.QueryEscape(args[0])
	if len(args) == 2 {
		uri += "&" + queryOf(args[1])
	}
	var row lib.Row
	if err := t.request(http.MethodGet, uri, nil, &row); err != nil {
		fmt.Fprintln(term, err.Error())
		return true
	}
	printRows(term, []lib.Row{row}, lib.AllColumns)
	return true
}

func (t *inspectTool) ls(term *terminal.Terminal, args []string) bool {
	if len(args) != 0 {
		fmt.Fprintln(term, "'ls' doesn't take any argument")
		return true
	}
	var bookmarks []bookmarkReply
	if err := t.request(
		http.MethodGet, "/api/bookmarks", nil, &bookmarks); err != nil {
		fmt.Fprintln(term, err.Error())
		return true
	}
	w := tabwriter.NewWriter(term, 2, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tName\tSlug\tQuery\t")
	for i, b := range bookmarks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", i, b.Name, b.Slug, b.Query)
	}
	_ = w.Flush()
	return true
}

func (t *inspectTool) show(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		fmt.Fprintln(term, "'show' takes exactly one argument")
		return true
	}
	var b bookmarkReply
	if err := t.request(http.MethodGet,
		"/api/bookmarks/"+url.PathEscape(args[0]), nil, &b); err != nil {
		fmt.Fprintln(term, err.Error())
		return true
	}
	return t.render(term, []string{b.Query})
}

func (t *inspectTool) save(term *terminal.Terminal, args []string) bool {
	if len(args) != 2 {
		fmt.Fprintln(term, "'save' takes exactly two arguments")
		return true
	}
	body, _ := json.Marshal(map[string]string{
		"name": args[0], "query": queryOf(args[1])})
	var b bookmarkReply
	if err := t.request(
		http.MethodPost, "/api/bookmarks", body, &b); err != nil {
		fmt.Fprintln(term, err.Error())
		return true
	}
	fmt.Fprintf(term, "Saved as %s\n%s\n", b.Slug, b.Link)
	return true
}

func (t *inspectTool) rm(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		fmt.Fprintln(term, "'rm' takes exactly one argument")
		return true
	}
	if err := t.request(http.MethodDelete,
		"/api/bookmarks/"+url.PathEscape(args[0]), nil, nil); err != nil {
		fmt.Fprintln(term, err.Error())
		return true
	}
	fmt.Fprintln(term, "Done")
	return true
}

func (t *inspectTool) request(
	method, uri string, body []byte, optPtrResp interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, t.addr+uri, reader)
	if err != nil {
		return errors.WithStack(err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close() // nolint: errcheck
	if resp.StatusCode/100 != 2 {
		data, _ := ioutil.ReadAll(resp.Body)
		return errors.Errorf("request status %s: %s", resp.Status, string(data))
	}
	if optPtrResp != nil {
		return json.NewDecoder(resp.Body).Decode(optPtrResp)
	}
	return nil
}

// queryOf strips everything up to the '?' of a link.
func queryOf(s string) string {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[i+1:]
	}
	return s
}
