package tools

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/richardtsai/subnetcalc/db"
	"github.com/richardtsai/subnetcalc/lib"
	"golang.org/x/crypto/ssh/terminal"
)

var allTools = []Tool{}

// Tool is the interface for auxiliary utilities that can be run as
// sub-commands.
type Tool interface {
	Name() string
	Description() string
	Run(args []string)
}

// Init initializes the tool facility.
func Init() {
	sort.SliceStable(allTools, func(i, j int) bool {
		return strings.Compare(allTools[i].Name(), allTools[j].Name()) < 0
	})
}

// Run executes a tool of the given name.
func Run(name string, args []string) {
	for _, t := range allTools {
		if t.Name() == name {
			t.Run(args)
			return
		}
	}
	_, _ = fmt.Fprintf(os.Stderr, "'%s' not found\n\n", name)
	PrintUsage()
}

// PrintUsage prints the tool help text to stderr.
func PrintUsage() {
	_, _ = fmt.Fprintf(os.Stderr, "Available tools:\n")
	for _, t := range allTools {
		_, _ = fmt.Fprintf(
			os.Stderr, "  %s\n    %s\n", t.Name(), t.Description())
	}
}

// consoleTool provides basic facilities for building a console tool
// with multiple sub-commands.
type consoleTool struct {
	prompt  string
	console *stdConsole
	term    *terminal.Terminal
	cmds    []consoleToolCmd
}

type consoleToolFunc func(term *terminal.Terminal, args []string) (cont bool)

type consoleToolCmd struct {
	name  string
	usage string
	f     consoleToolFunc
}

func (t *consoleTool) setupConsole(prompt string) error {
	var err error
	if t.console, err = getStdConsole(); err != nil {
		return err
	}
	t.prompt = prompt
	t.term = terminal.NewTerminal(t.console, prompt)
	return nil
}

func (t *consoleTool) teardownConsole() {
	if t.console != nil {
		_ = t.console.Close()
	}
	t.console = nil
	t.term = nil
}

func (t *consoleTool) addCmd(name, usage string, f consoleToolFunc) {
	// t.cmds is a slice rather than a map, so that we can preserve the order.
	t.cmds = append(t.cmds, consoleToolCmd{name: name, usage: usage, f: f})
}

func (t *consoleTool) printCmdUsage() {
	t.term.SetPrompt("")
	defer t.term.SetPrompt(t.prompt)
	_, _ = fmt.Fprintln(t.term, "Available cmds:")
	hasQuit := false
	for _, cmd := range t.cmds {
		if cmd.name == "quit" {
			hasQuit = true
		}
		_, _ = fmt.Fprintf(t.term, "  %s\n", cmd.usage)
	}
	if !hasQuit {
		_, _ = fmt.Fprintln(t.term, "  quit")
	}
}

// confirm asks a yes/no question on the console. Anything but "y" or "yes"
// is a no.
func (t *consoleTool) confirm(question string) bool {
	t.term.SetPrompt(question + " [y/N] ")
	defer t.term.SetPrompt("")
	line, err := t.term.ReadLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (t *consoleTool) runLoop() {
cmdLoop:
	for {
		line, err := t.term.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			panic(err)
		}
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // empty input
			continue
		}
		for _, cmd := range t.cmds {
			if cmd.name == tokens[0] {
				t.term.SetPrompt("")
				cont := cmd.f(t.term, tokens[1:])
				t.term.SetPrompt(t.prompt)
				if cont { // cmd wants to continue
					continue cmdLoop
				}
				break cmdLoop
			}
		}
		if tokens[0] == "quit" {
			break
		}
		t.printCmdUsage() // cmd not found
	}
}

// loadConfig parses the configuration file and initializes the bookmark
// database when the file has a 'db' section.
func loadConfig(configFile string) (*lib.Config, error) {
	config, err := lib.ParseConfigFile(configFile)
	if err != nil {
		return nil, err
	}
	if config.DB != nil {
		if err = db.InitDB(*config.DB); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// printRows renders rows as a table showing the visible columns only.
func printRows(out io.Writer, rows []lib.Row, cols lib.Columns) {
	w := tabwriter.NewWriter(out, 4, 0, 2, ' ', 0)
	header := []string{"ID"}
	for _, name := range lib.ColumnNames {
		if cols.Visible(name) {
			header = append(header, strings.ToUpper(name[:1])+name[1:])
		}
	}
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, r := range rows {
		fields := []string{fmt.Sprint(r.NodeID)}
		for _, name := range lib.ColumnNames {
			if cols.Visible(name) {
				fields = append(fields, rowField(r, name))
			}
		}
		_, _ = fmt.Fprintln(w, strings.Join(fields, "\t"))
	}
	_ = w.Flush()
}

func rowField(r lib.Row, column string) string {
	switch column {
	case "subnet":
		return r.Subnet
	case "netmask":
		return r.Netmask
	case "range":
		return r.AddressRange
	case "useable":
		return r.UsableRange
	case "hosts":
		return fmt.Sprint(r.Hosts)
	case "remark":
		return r.Remark
	case "divide":
		if r.Divisible {
			return fmt.Sprintf("divide %d", r.NodeID)
		}
		return "-"
	case "join":
		var cells []string
		for _, c := range r.JoinCells {
			if c.Joinable {
				cells = append(cells, fmt.Sprintf("/%d(%d)", c.Mask, c.NodeID))
			} else {
				cells = append(cells, fmt.Sprintf("/%d", c.Mask))
			}
		}
		return strings.Join(cells, " ")
	}
	return ""
}

// stdConsole is a wrapper around io.Stdin and os.Stdout. It sets the stdin to
// raw mode on creation, and reset on Close.
type stdConsole struct {
	oldState *terminal.State
}

func getStdConsole() (*stdConsole, error) {
	s, err := terminal.MakeRaw(syscall.Stdin)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &stdConsole{s}, nil
}

func (*stdConsole) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (*stdConsole) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (c *stdConsole) Close() error {
	return terminal.Restore(syscall.Stdin, c.oldState)
}
