package parser

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parser instances so a project-wide scan
// does not pay the sitter.NewParser allocation cost per file. Each pool is
// tied to one grammar; plugins own their pool.
//
// Safe for concurrent use; the index's parallel parse workers share it.
type ParserPool struct {
	lang *sitter.Language
	pool sync.Pool
}

func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// Get returns a parser already configured for the pool's language.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	sp.SetLanguage(p.lang)
	return sp
}

// Put resets the parser and returns it for reuse. Callers must not use sp
// after calling Put.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	sp.Reset()
	p.pool.Put(sp)
}
