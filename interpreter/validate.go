package interpreter

import (
	"go/parser"
	"go/scanner"
	"go/token"
)

// StaticValidate validates a code snippet without executing it. Go snippets
// are parsed with go/parser; for languages with no available validator the
// result carries a nil Valid (unknown) rather than a verdict.
//
// Shared by the live interpreter implementations so they report identical
// validation semantics.
func StaticValidate(code, language string) ValidationResult {
	if language == "" {
		language = DefaultLanguage
	}
	if language != "go" && language != "golang" {
		return ValidationResult{
			Language: language,
			Message:  "no validator available for " + language,
		}
	}

	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "snippet.go", code, parser.AllErrors)
	if err != nil {
		// Snippets without a package clause are still acceptable.
		fset = token.NewFileSet()
		_, retryErr := parser.ParseFile(fset, "snippet.go", "package main\n"+code, parser.AllErrors)
		if retryErr == nil {
			err = nil
		}
	}
	if err == nil {
		valid := true
		return ValidationResult{Valid: &valid, Language: language}
	}

	invalid := false
	result := ValidationResult{
		Valid:    &invalid,
		Error:    err.Error(),
		Language: language,
	}
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		result.Error = list[0].Msg
		result.Line = list[0].Pos.Line
		result.Offset = list[0].Pos.Column
	}
	return result
}
