package reference

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/branched-services/go-bundler/compiler"
)

var (
	importRE    = regexp.MustCompile(`import\s*\{([^}]*)\}\s*from\s*("[^"]*"|[A-Za-z_][A-Za-z0-9_]*)`)
	scriptRefRE = regexp.MustCompile(`Scripts::([A-Za-z_][A-Za-z0-9_]*)`)
	paramRE     = regexp.MustCompile(`(?m)^[ \t]*param[ \t]+[A-Za-z_][A-Za-z0-9_]*`)
	mainRE      = regexp.MustCompile(`func\s+main\s*\(([^)]*)\)`)
)

// unit is one parsed source: the main script or a module.
type unit struct {
	index   int
	name    string
	purpose compiler.Purpose
	src     string
	body    string
	// headerLines is the number of newlines consumed by the header.
	headerLines int
}

func parseUnit(index int, src string) (*unit, error) {
	h, body, err := compiler.SplitHeader(src)
	if err != nil {
		return nil, &compiler.SourceError{Index: index, Line: 1, Msg: "unable to parse header"}
	}
	purpose, ok := compiler.ParsePurpose(h.Keyword)
	if !ok {
		return nil, &compiler.SourceError{Index: index, Line: 1, Msg: fmt.Sprintf("unknown script purpose %q", h.Keyword)}
	}
	return &unit{
		index:       index,
		name:        h.Name,
		purpose:     purpose,
		src:         src,
		body:        body,
		headerLines: strings.Count(src[:len(src)-len(body)], "\n"),
	}, nil
}

// line maps an offset into text, a rewrite of u.body that preserves
// newlines, to a 1-based source line.
func (u *unit) line(text string, off int) int {
	return u.headerLines + strings.Count(text[:off], "\n") + 1
}

func (u *unit) errorf(text string, off int, format string, args ...any) error {
	return &compiler.SourceError{Index: u.index, Line: u.line(text, off), Msg: fmt.Sprintf(format, args...)}
}

// declares reports whether the unit declares a top-level symbol.
func (u *unit) declares(sym string) bool {
	re := regexp.MustCompile(`\b(?:struct|enum|func|const)\s+` + regexp.QuoteMeta(sym) + `\b`)
	return re.MatchString(u.body)
}

const (
	unvisited = iota
	visiting
	linked
)

type linkedModule struct {
	name string
	body string
}

// linker resolves imports and collects module bodies in dependency order.
type linker struct {
	modules map[string]*unit
	types   compiler.ScriptTypes
	state   map[string]int
	order   []linkedModule
}

// link returns the body of u with sibling references turned into markers
// and import statements removed.
func (l *linker) link(u *unit) (string, error) {
	text, err := l.rewriteRefs(u)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	last := 0
	for _, m := range importRE.FindAllStringSubmatchIndex(text, -1) {
		target := text[m[4]:m[5]]
		if strings.HasPrefix(target, `"`) {
			return "", u.errorf(text, m[0], "unresolved import path %s", target)
		}
		dep, ok := l.modules[target]
		if !ok {
			return "", u.errorf(text, m[0], "module %s not found", target)
		}
		for _, sym := range strings.Split(text[m[2]:m[3]], ",") {
			sym = strings.TrimSpace(sym)
			if sym != "" && !dep.declares(sym) {
				return "", u.errorf(text, m[0], "module %s does not export %s", target, sym)
			}
		}
		switch l.state[dep.name] {
		case visiting:
			return "", u.errorf(text, m[0], "circular import of module %s", dep.name)
		case unvisited:
			if err := l.include(dep); err != nil {
				return "", err
			}
		}
		b.WriteString(text[last:m[0]])
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

func (l *linker) include(u *unit) error {
	l.state[u.name] = visiting
	body, err := l.link(u)
	if err != nil {
		return err
	}
	l.state[u.name] = linked
	l.order = append(l.order, linkedModule{name: u.name, body: body})
	return nil
}

func (l *linker) rewriteRefs(u *unit) (string, error) {
	var b strings.Builder
	last := 0
	for _, m := range scriptRefRE.FindAllStringSubmatchIndex(u.body, -1) {
		name := u.body[m[2]:m[3]]
		if _, ok := l.types[name]; !ok {
			return "", u.errorf(u.body, m[0], "unknown script %s", name)
		}
		b.WriteString(u.body[last:m[0]])
		b.WriteString(compiler.ScriptMarker(name))
		last = m[1]
	}
	b.WriteString(u.body[last:])
	return b.String(), nil
}

func parse(src string, moduleSrcs []string, types compiler.ScriptTypes, opts compiler.LowerOptions) (*program, error) {
	main, err := parseUnit(0, src)
	if err != nil {
		return nil, err
	}
	if main.purpose == compiler.PurposeModule {
		return nil, &compiler.SourceError{Index: 0, Line: 1, Msg: fmt.Sprintf("module %s has no entry point", main.name)}
	}

	l := &linker{
		modules: make(map[string]*unit, len(moduleSrcs)),
		types:   types,
		state:   make(map[string]int),
	}
	for i, s := range moduleSrcs {
		u, err := parseUnit(i+1, s)
		if err != nil {
			return nil, err
		}
		if u.purpose != compiler.PurposeModule {
			return nil, &compiler.SourceError{Index: i + 1, Line: 1, Msg: fmt.Sprintf("%s is not a module", u.name)}
		}
		l.modules[u.name] = u
	}

	body, err := l.link(main)
	if err != nil {
		return nil, err
	}

	nParams := len(paramRE.FindAllStringIndex(body, -1))
	if nParams > 0 && !opts.AllowParams {
		return nil, &compiler.SourceError{Index: 0, Msg: "positional parameters are not allowed here"}
	}

	sig := mainRE.FindStringSubmatch(body)
	if sig == nil {
		return nil, &compiler.SourceError{Index: 0, Msg: "missing main function"}
	}
	args := splitArgs(sig[1])

	p := &program{
		name:      main.name,
		purpose:   main.purpose,
		nParams:   nParams,
		arity:     len(args),
		datumType: "Data",
	}
	if main.purpose == compiler.PurposeSpending && len(args) == 3 {
		p.datumSplit = true
		if _, typ, ok := strings.Cut(args[0], ":"); ok && strings.TrimSpace(typ) != "" {
			p.datumType = strings.TrimSpace(typ)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// %s %s\n", main.purpose, main.name)
	for _, m := range l.order {
		fmt.Fprintf(&b, "// module %s\n%s\n", m.name, strings.TrimSpace(m.body))
	}
	b.WriteString(strings.TrimSpace(body))
	p.text = b.String()

	return p, nil
}

func splitArgs(s string) []string {
	var args []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			args = append(args, a)
		}
	}
	return args
}
