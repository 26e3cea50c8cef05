// Package nosecretlog reports passwords, password hashes and signing secrets
// handed to a logging call.
package nosecretlog

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer flags arguments of Debug*, Info*, Warn*, Error*, Fatal*, Panic*
// and Print* calls that mention a value named like a credential.
var Analyzer = &analysis.Analyzer{
	Name: "nosecretlog",
	Doc:  "reports passwords, password hashes and signing secrets passed to loggers",
	Run:  run,
}

var loggingPrefixes = []string{"Debug", "Info", "Warn", "Error", "DPanic", "Panic", "Fatal", "Print"}

// secretNames are compared lower-cased.
var secretNames = map[string]struct{}{
	"password":         {},
	"passwordhash":     {},
	"jwtsecret":        {},
	"signingsecretkey": {},
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok || !isLoggingMethod(sel.Sel.Name) {
				return true
			}

			for _, arg := range call.Args {
				if mentionsSecret(arg) {
					pass.Reportf(arg.Pos(), "possible secret passed to logger: %s", types.ExprString(arg))
				}
			}

			return true
		})
	}

	return nil, nil
}

func isLoggingMethod(name string) bool {
	for _, prefix := range loggingPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

func mentionsSecret(expr ast.Expr) bool {
	found := false
	ast.Inspect(expr, func(n ast.Node) bool {
		if found {
			return false
		}

		switch node := n.(type) {
		case *ast.SelectorExpr:
			found = isSecretName(node.Sel.Name)
		case *ast.Ident:
			found = isSecretName(node.Name)
		}

		return !found
	})

	return found
}

func isSecretName(name string) bool {
	_, ok := secretNames[strings.ToLower(name)]
	return ok
}
