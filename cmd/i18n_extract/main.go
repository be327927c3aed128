// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command i18n_extract writes the gettext template po/dailyfe.pot from the
// messages used in the Go sources of this module.
//
// A message is picked up when it is a constant
//   - passed as the msgid of i18n.Tr, i18n.TrN or i18n.NewUserError,
//   - passed as the msgid of the markup helpers fragments.Tr or fragments.TrN,
//   - or typed as i18n.MsgKey, for example a struct field or a parameter.
package main

import (
	"cmp"
	"flag"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/tools/go/packages"
)

// msgid arguments by function, per package name.
//
// The first index is the msgid, the second the plural if any.
var trFuncs = map[string]map[string][]int{
	"i18n": {
		"Tr":           {1},
		"TrN":          {1, 2},
		"NewUserError": {1},
	},
	"fragments": {
		"Tr":  {0},
		"TrN": {0, 1},
	},
}

type entry struct {
	id     string
	plural string
}

type position struct {
	file string
	line int
}

type catalog struct {
	root string
	refs map[entry][]position
}

func main() {
	outPath := flag.String("o", "po/dailyfe.pot", "output file")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}

	pkgs, err := packages.Load(&packages.Config{
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
	}, "./...")
	if err != nil {
		log.Fatalf("failed to load packages: %v", err)
	}

	if packages.PrintErrors(pkgs) > 0 {
		log.Fatal("failed to load packages due to errors")
	}

	c := &catalog{root: moduleRoot(wd), refs: make(map[entry][]position)}

	for _, p := range pkgs {
		c.scan(p)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := os.WriteFile(*outPath, []byte(c.pot()), 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *outPath, err)
	}

	log.Printf("wrote %d messages to %s", len(c.refs), *outPath)
}

func (c *catalog) scan(p *packages.Package) {
	if p.TypesInfo == nil {
		return
	}

	for expr, tv := range p.TypesInfo.Types {
		if isMsgKey(tv.Type) {
			if id, ok := constString(tv); ok {
				c.add(p.Fset, expr.Pos(), entry{id: id})
			}
		}
	}

	for _, f := range p.Syntax {
		ast.Inspect(f, func(n ast.Node) bool {
			if call, ok := n.(*ast.CallExpr); ok {
				c.call(p, call)
			}

			return true
		})
	}
}

// call records the msgid of a translation call.
func (c *catalog) call(p *packages.Package, call *ast.CallExpr) {
	var ident *ast.Ident

	switch fun := call.Fun.(type) {
	case *ast.SelectorExpr:
		ident = fun.Sel
	case *ast.Ident:
		// dot imports
		ident = fun
	default:
		return
	}

	fn, ok := p.TypesInfo.Uses[ident].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return
	}

	args, ok := trFuncs[fn.Pkg().Name()][fn.Name()]
	if !ok || len(call.Args) <= args[len(args)-1] {
		return
	}

	id, ok := constString(p.TypesInfo.Types[call.Args[args[0]]])
	if !ok {
		return
	}

	e := entry{id: id}

	if len(args) > 1 {
		if e.plural, ok = constString(p.TypesInfo.Types[call.Args[args[1]]]); !ok {
			return
		}
	}

	c.add(p.Fset, call.Args[args[0]].Pos(), e)
}

func (c *catalog) add(fset *token.FileSet, pos token.Pos, e entry) {
	p := fset.Position(pos)

	file := p.Filename
	if rel, err := filepath.Rel(c.root, file); err == nil {
		file = rel
	}

	at := position{file: filepath.ToSlash(file), line: p.Line}

	if !slices.Contains(c.refs[e], at) {
		c.refs[e] = append(c.refs[e], at)
	}
}

// pot renders the catalog with entries and references in a stable order.
func (c *catalog) pot() string {
	var b strings.Builder

	fmt.Fprintln(&b, `msgid ""`)
	fmt.Fprintln(&b, `msgstr ""`)
	fmt.Fprintf(&b, "\"Project-Id-Version: dailyfe %s\\n\"\n", version())
	fmt.Fprintf(&b, "\"POT-Creation-Date: %s\\n\"\n", time.Now().UTC().Format("2006-01-02 15:04+0000"))
	fmt.Fprintln(&b, `"Language: en\n"`)
	fmt.Fprintln(&b, `"MIME-Version: 1.0\n"`)
	fmt.Fprintln(&b, `"Content-Type: text/plain; charset=UTF-8\n"`)
	fmt.Fprintln(&b, `"Content-Transfer-Encoding: 8bit\n"`)
	fmt.Fprintln(&b, `"Plural-Forms: nplurals=2; plural=(n != 1);\n"`)

	entries := make([]entry, 0, len(c.refs))
	for e := range c.refs {
		entries = append(entries, e)
	}

	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Or(cmp.Compare(a.id, b.id), cmp.Compare(a.plural, b.plural))
	})

	for _, e := range entries {
		refs := c.refs[e]
		slices.SortFunc(refs, func(a, b position) int {
			return cmp.Or(cmp.Compare(a.file, b.file), cmp.Compare(a.line, b.line))
		})

		fmt.Fprint(&b, "\n#:")

		for _, r := range refs {
			fmt.Fprintf(&b, " %s:%d", r.file, r.line)
		}

		fmt.Fprintf(&b, "\nmsgid %q\n", e.id)

		if e.plural != "" {
			fmt.Fprintf(&b, "msgid_plural %q\nmsgstr[0] \"\"\nmsgstr[1] \"\"\n", e.plural)
		} else {
			fmt.Fprintln(&b, `msgstr ""`)
		}
	}

	return b.String()
}

// isMsgKey reports whether t is the MsgKey type of package i18n.
func isMsgKey(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}

	obj := named.Obj()

	return obj.Pkg() != nil && obj.Pkg().Name() == "i18n" && obj.Name() == "MsgKey"
}

func constString(tv types.TypeAndValue) (string, bool) {
	if tv.Value == nil || tv.Value.Kind() != constant.String {
		return "", false
	}

	return constant.StringVal(tv.Value), true
}

// version is the output of git describe, or "dev" outside a checkout.
func version() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	if err != nil {
		return "dev"
	}

	return strings.TrimSpace(string(out))
}

// moduleRoot is the nearest parent of dir that has a go.mod.
func moduleRoot(dir string) string {
	for d := filepath.Clean(dir); ; {
		if _, err := os.Stat(filepath.Join(d, "go.mod")); err == nil {
			return d
		}

		parent := filepath.Dir(d)
		if parent == d {
			return dir
		}

		d = parent
	}
}
