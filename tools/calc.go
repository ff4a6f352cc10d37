package tools

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/richardtsai/subnetcalc/db"
	"github.com/richardtsai/subnetcalc/lib"
	"go.uber.org/zap"
)

func init() {
	allTools = append(allTools, &calcTool{})
}

type calcTool struct {
	consoleTool
	calc *lib.Calculator
}

func (calcTool) Name() string {
	return "calc"
}

func (calcTool) Description() string {
	return "Divide a network interactively"
}

func (t *calcTool) Run(args []string) {
	fs := flag.NewFlagSet("calc", flag.ExitOnError)
	configFile := fs.String("c", "", "optional subnetcalc configuration file")
	bookmark := fs.String("b", "", "bookmark link or query to start from")
	_ = fs.Parse(args[1:])

	config := &lib.Config{}
	if *configFile != "" {
		var err error
		if config, err = loadConfig(*configFile); err != nil {
			panic(err)
		}
	}
	if config.Logging.Level == "" { // keep the console quiet
		config.Logging.Level = "error"
	}
	log, err := lib.CreateLogger(config.Logging)
	if err != nil {
		log = zap.NewNop().Sugar()
	}
	state, err := config.Defaults.State()
	if err != nil {
		panic(err)
	}

	if err = t.setupConsole("calc> "); err != nil {
		panic(err)
	}
	defer t.teardownConsole()
	t.calc = lib.NewCalculator(
		log.Named("calc"), state, config.Server.Link(), t.confirmMask)
	if *bookmark != "" {
		if err = t.calc.Load(*bookmark); err != nil {
			_, _ = fmt.Fprintf(t.term, "failed to load bookmark: %v\n", err)
		}
	}

	t.addCmd("show", "show", t.show)
	t.addCmd("network", "network ADDRESS/MASK", t.network)
	t.addCmd("divide", "divide ID", t.divide)
	t.addCmd("join", "join ID", t.join)
	t.addCmd("remark", "remark ID [TEXT...]", t.remark)
	t.addCmd("reset", "reset", t.reset)
	t.addCmd("cols", "cols [NAME on|off]", t.cols)
	t.addCmd("reserve", "reserve FRONT END", t.reserve)
	t.addCmd("name", "name [TEXT...]", t.name)
	t.addCmd("locate", "locate ADDRESS", t.locate)
	t.addCmd("under", "under ID", t.under)
	t.addCmd("link", "link", t.link)
	t.addCmd("load", "load LINK_OR_QUERY", t.load)
	if db.Inited {
		t.addCmd("save", "save NAME", t.save)
		t.addCmd("open", "open NAME", t.open)
	}
	t.runLoop()
}

func (t *calcTool) confirmMask(oldMask, newMask int) bool {
	return t.confirm(fmt.Sprintf(
		"Changing the mask from /%d to /%d discards every division. Continue?",
		oldMask, newMask))
}

func (t *calcTool) show(term *terminal.Terminal, args []string) bool {
	s := t.calc.State()
	e := t.calc.Export()
	if s.Name != "" {
		_, _ = fmt.Fprintf(term, "%s: ", s.Name)
	}
	_, _ = fmt.Fprintf(term, "%s/%d, %d subnets\n", s.Network, s.Mask, len(e.Rows))
	printRows(term, e.Rows, e.Columns)
	return true
}

func (t *calcTool) network(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	parts := strings.SplitN(args[0], "/", 2)
	maskText := strconv.Itoa(t.calc.State().Mask)
	if len(parts) == 2 {
		maskText = parts[1]
	}
	change, err := t.calc.SetNetwork(parts[0], maskText)
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	if change.Normalized {
		_, _ = fmt.Fprintf(term, "network moved to %s/%d\n",
			change.Network, change.Mask)
	}
	if change.Declined {
		_, _ = fmt.Fprintf(term, "mask kept at /%d\n", change.Mask)
	}
	return t.show(term, nil)
}

func (t *calcTool) withID(
	term *terminal.Terminal, args []string, f func(id int) error) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(term, "invalid id '%s'\n", args[0])
		return true
	}
	if err = f(id); err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	return t.show(term, nil)
}

func (t *calcTool) divide(term *terminal.Terminal, args []string) bool {
	return t.withID(term, args, t.calc.Divide)
}

func (t *calcTool) join(term *terminal.Terminal, args []string) bool {
	return t.withID(term, args, t.calc.Join)
}

func (t *calcTool) remark(term *terminal.Terminal, args []string) bool {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(term, "an id is required")
		return true
	}
	text := strings.Join(args[1:], " ")
	return t.withID(term, args[:1], func(id int) error {
		return t.calc.SetRemark(id, text)
	})
}

func (t *calcTool) reset(term *terminal.Terminal, args []string) bool {
	t.calc.StartOver()
	return t.show(term, nil)
}

func (t *calcTool) cols(term *terminal.Terminal, args []string) bool {
	switch len(args) {
	case 0:
		for _, name := range lib.ColumnNames {
			_, _ = fmt.Fprintf(term, "  %-8s %t\n",
				name, t.calc.State().Columns.Visible(name))
		}
	case 2:
		visible := args[1] == "on"
		if !visible && args[1] != "off" {
			_, _ = fmt.Fprintln(term, "visibility should be 'on' or 'off'")
			return true
		}
		if err := t.calc.SetColumn(args[0], visible); err != nil {
			_, _ = fmt.Fprintf(term, "%v\n", err)
		}
	default:
		_, _ = fmt.Fprintln(term, "zero or two arguments are required")
	}
	return true
}

func (t *calcTool) reserve(term *terminal.Terminal, args []string) bool {
	if len(args) != 2 {
		_, _ = fmt.Fprintln(term, "exactly two arguments are required")
		return true
	}
	t.calc.SetReserve(args[0], args[1])
	s := t.calc.State()
	_, _ = fmt.Fprintf(term, "reserving %d at the front and %d at the end\n",
		s.ReserveFront, s.ReserveEnd)
	return true
}

func (t *calcTool) name(term *terminal.Terminal, args []string) bool {
	t.calc.SetName(strings.Join(args, " "))
	return true
}

func (t *calcTool) locate(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	addr, err := lib.ParseAddr(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	row, ok := t.calc.Locate(addr)
	if !ok {
		_, _ = fmt.Fprintf(term, "%s is not in this network\n", addr)
		return true
	}
	printRows(term, []lib.Row{row}, t.calc.State().Columns)
	return true
}

func (t *calcTool) under(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(term, "invalid id '%s'\n", args[0])
		return true
	}
	rowIdx, ids, err := t.calc.JoinHighlight(id)
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	rows := t.calc.Export().Rows
	var merged []lib.Row
	for _, i := range rowIdx {
		merged = append(merged, rows[i])
	}
	_, _ = fmt.Fprintf(term, "joining %d merges nodes %v\n", id, ids)
	printRows(term, merged, t.calc.State().Columns)
	return true
}

func (t *calcTool) link(term *terminal.Terminal, args []string) bool {
	_, _ = fmt.Fprintln(term, t.calc.Export().Link)
	return true
}

func (t *calcTool) load(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	if err := t.calc.Load(args[0]); err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	for _, p := range t.calc.State().Problems {
		_, _ = fmt.Fprintf(term, "ignored: %v\n", p)
	}
	return t.show(term, nil)
}

func (t *calcTool) save(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	dao, err := db.NewBookmarkDAO()
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	defer dao.Close() // nolint: errcheck

	query := t.calc.Export().Query
	if b, err := dao.Get(args[0]); err == nil {
		b.Query = query
		err = dao.Update(b)
		if err != nil {
			_, _ = fmt.Fprintf(term, "%v\n", err)
		} else {
			_, _ = fmt.Fprintf(term, "bookmark '%s' updated\n", b.Name)
		}
		return true
	}
	b := &db.Bookmark{Name: args[0], Query: query}
	if err = dao.Add(b); err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
	} else {
		_, _ = fmt.Fprintf(term, "bookmark '%s' saved as %s\n", b.Name, b.Slug)
	}
	return true
}

func (t *calcTool) open(term *terminal.Terminal, args []string) bool {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(term, "exactly one argument is required")
		return true
	}
	dao, err := db.NewBookmarkDAO()
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	defer dao.Close() // nolint: errcheck
	b, err := dao.Get(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(term, "%v\n", err)
		return true
	}
	return t.load(term, []string{b.Query})
}
