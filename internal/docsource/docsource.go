// Package docsource loads data object documentation from Go source.
//
// Type and method doc comments supply summaries and long descriptions.
// Return and parameter contracts are declared with line directives in the
// method's doc comment:
//
//	// GetCustomer returns the buyer.
//	//dataobject:return Customer|null the buyer, null for guest orders
//	func (o *Order) GetCustomer() *Customer
//
//	//dataobject:param string[] skus
//	func (s *Service) Find(skus []any) []*Order
//
// The imports of the declaring file become the alias table of the type, so
// references such as data.Customer resolve like they do in Go code.
package docsource

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/dataobject/reflection"
)

const directivePrefix = "//dataobject:"

// Result holds the documentation found in the loaded packages.
type Result struct {
	// Packages lists the import paths that were scanned.
	Packages []string

	// Types maps qualified type names to their documentation.
	Types map[string]reflection.TypeDoc
}

// Names returns the documented qualified names, sorted.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Types))
	for name := range r.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply merges the loaded documentation into the registered types of c.
// Documentation already registered wins. It returns the number of types
// that were documented.
func (r *Result) Apply(c *reflection.Catalog) int {
	n := 0
	for _, name := range r.Names() {
		if c.Document(name, r.Types[name]) {
			n++
		}
	}
	return n
}

// Load scans the packages matching pattern, with go command semantics
// ("./...", an import path, or a directory).
func Load(pattern string) (*Result, error) {
	return LoadDir(pattern, "")
}

// LoadDir is like Load but resolves pattern from dir. If dir is empty, the
// current directory is used.
func LoadDir(pattern, dir string) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
		Dir:  dir,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load package: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %q", pattern)
	}

	result := &Result{Types: make(map[string]reflection.TypeDoc)}
	fset := token.NewFileSet()
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package errors: %v", pkg.Errors[0])
		}
		result.Packages = append(result.Packages, pkg.PkgPath)
		for _, filename := range pkg.GoFiles {
			f, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", filename, err)
			}
			if err := parseFile(fset, f, pkg.PkgPath, result.Types); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// parseFile adds the documentation of the types and methods declared in f.
func parseFile(fset *token.FileSet, f *ast.File, pkgPath string, docs map[string]reflection.TypeDoc) error {
	uses := imports(f)

	for _, decl := range f.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			if decl.Tok != token.TYPE {
				continue
			}
			for _, spec := range decl.Specs {
				ts := spec.(*ast.TypeSpec)
				if !ts.Name.IsExported() {
					continue
				}
				group := ts.Doc
				if group == nil && len(decl.Specs) == 1 {
					group = decl.Doc
				}
				name := pkgPath + "." + ts.Name.Name
				doc := docs[name]
				doc.Summary, doc.Body = splitText(group)
				doc.Uses = mergeUses(doc.Uses, uses)

				if it, ok := ts.Type.(*ast.InterfaceType); ok {
					for _, field := range it.Methods.List {
						if len(field.Names) != 1 || !field.Names[0].IsExported() {
							continue
						}
						a, err := annotation(fset, field.Doc)
						if err != nil {
							return err
						}
						doc.Methods = addMethod(doc.Methods, field.Names[0].Name, a)
					}
				}
				docs[name] = doc
			}
		case *ast.FuncDecl:
			recv := receiverName(decl)
			if recv == "" || !decl.Name.IsExported() {
				continue
			}
			a, err := annotation(fset, decl.Doc)
			if err != nil {
				return err
			}
			name := pkgPath + "." + recv
			doc := docs[name]
			doc.Methods = addMethod(doc.Methods, decl.Name.Name, a)
			doc.Uses = mergeUses(doc.Uses, uses)
			docs[name] = doc
		}
	}
	return nil
}

// annotation reads a method's doc comment.
func annotation(fset *token.FileSet, group *ast.CommentGroup) (reflection.Annotation, error) {
	var a reflection.Annotation
	if group == nil {
		return a, nil
	}
	a.Summary, _ = splitText(group)
	for _, c := range group.List {
		text, ok := strings.CutPrefix(c.Text, directivePrefix)
		if !ok {
			continue
		}
		pos := fset.Position(c.Pos())
		kind, rest, _ := strings.Cut(text, " ")
		fields := strings.Fields(rest)
		switch kind {
		case "return":
			if len(fields) == 0 {
				return a, fmt.Errorf("%s: //dataobject:return needs a type", pos)
			}
			if a.Returns != "" {
				return a, fmt.Errorf("%s: duplicate //dataobject:return", pos)
			}
			a.Returns = fields[0]
			a.Description = strings.Join(fields[1:], " ")
		case "param":
			if len(fields) != 2 {
				return a, fmt.Errorf("%s: //dataobject:param needs a type and a name", pos)
			}
			a.Params = append(a.Params, reflection.Param{Type: fields[0], Name: fields[1]})
		default:
			return a, fmt.Errorf("%s: unknown directive //dataobject:%s", pos, kind)
		}
	}
	return a, nil
}

// splitText splits a doc comment into its first paragraph and the rest.
// Directive lines are not part of the text.
func splitText(group *ast.CommentGroup) (summary, body string) {
	if group == nil {
		return "", ""
	}
	text := strings.TrimSpace(group.Text())
	summary, body, _ = strings.Cut(text, "\n\n")
	summary = strings.Join(strings.Fields(summary), " ")
	return summary, strings.TrimSpace(body)
}

func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) != 1 {
		return ""
	}
	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.IndexExpr:
		expr = e.X
	case *ast.IndexListExpr:
		expr = e.X
	}
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

// imports returns the file's import table, alias to import path.
func imports(f *ast.File) map[string]string {
	uses := make(map[string]string)
	for _, spec := range f.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		alias := path.Base(importPath)
		if spec.Name != nil {
			alias = spec.Name.Name
		}
		if alias == "_" || alias == "." {
			continue
		}
		uses[alias] = importPath
	}
	return uses
}

func mergeUses(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for alias, importPath := range src {
		if _, ok := dst[alias]; !ok {
			dst[alias] = importPath
		}
	}
	return dst
}

func addMethod(methods map[string]reflection.Annotation, name string, a reflection.Annotation) map[string]reflection.Annotation {
	if a.Returns == "" && a.Summary == "" && len(a.Params) == 0 {
		return methods
	}
	if methods == nil {
		methods = make(map[string]reflection.Annotation)
	}
	methods[name] = a
	return methods
}
