package boolexpr

import (
	"github.com/alecthomas/participle/v2/lexer"
)

/*
MySQL-flavored tokens. Keywords are matched case-insensitively; anything
that looks like a keyword but continues with identifier characters (such as
`order_id`) lexes as an identifier.

Only words that can never name a column are keywords. Non-reserved words
used by the grammar (`END`, `DIV`, `SHARE` and so on) lex as identifiers and
are matched as case-insensitive literals in the positions where they apply.
*/
var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: `Keyword`, Pattern: `(?i)\b(AND|OR|XOR|NOT|IS|NULL|IN|BETWEEN|LIKE|REGEXP|ESCAPE|EXISTS|TRUE|FALSE|SELECT|WHERE|GROUP|BY|HAVING|ORDER|ASC|DESC|LIMIT|OFFSET|FOR|UPDATE|CASE|WHEN|THEN|ELSE|INTERVAL)\b`},
	{Name: `QuotedIdent`, Pattern: "`(?:[^`]|``)*`"},
	{Name: `Hex`, Pattern: `[xX]'[0-9a-fA-F]*'|[bB]'[01]*'|0x[0-9a-fA-F]+\b|0b[01]+\b`},
	{Name: `String`, Pattern: `'(?:\\.|''|[^'\\])*'|"(?:\\.|""|[^"\\])*"`},
	{Name: `Number`, Pattern: `\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`},
	{Name: `Ident`, Pattern: `[a-zA-Z_][a-zA-Z0-9_$]*`},
	{Name: `Placeholder`, Pattern: `\?|:[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: `Comment`, Pattern: `--[^\n]*|/\*(?:[^*]|\*[^/])*\*/`},
	{Name: `Operator`, Pattern: `<=>|<>|!=|<=|>=|<<|>>|->>|->|&&|\|\||[-+*/%=<>!,.()&|^~]`},
	{Name: `Whitespace`, Pattern: `\s+`},
})

type whereClause struct {
	Cond *orCond   `"WHERE" @@`
	Tail []*trailer `@@*`
}

type orCond struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Terms []*andCond `@@ ( ( "OR" | "XOR" | "||" ) @@ )*`
}

type andCond struct {
	Terms []*notCond `@@ ( ( "AND" | "&&" ) @@ )*`
}

type notCond struct {
	Not  []string   `@( "NOT" | "!" )*`
	Pred *predicate `@@`
}

type predicate struct {
	Exists *subquery `  "EXISTS" "(" @@ ")"`
	Left   *operand  `| @@`
	Rest   *predTail `  @@?`
}

type predTail struct {
	Compare *comparison `  @@`
	Is      *isTest     `| @@`
	Negated *negatable  `| @@`
}

type comparison struct {
	Op    string   `@( "<=>" | "<>" | "!=" | "<=" | ">=" | "=" | "<" | ">" )`
	Right *operand `@@`
}

type isTest struct {
	Not  bool   `"IS" @"NOT"?`
	What string `@( "NULL" | "TRUE" | "FALSE" | "UNKNOWN" )`
}

type negatable struct {
	Not     bool     `@"NOT"?`
	Between *between `( @@`
	In      *inList  `| @@`
	Like    *like    `| @@ )`
}

type between struct {
	Low  *operand `"BETWEEN" @@`
	High *operand `"AND" @@`
}

type inList struct {
	Select *subquery  `"IN" "(" ( @@`
	Values []*operand `| @@ ( "," @@ )* ) ")"`
}

type like struct {
	Op      string   `@( "LIKE" | "REGEXP" | "RLIKE" )`
	Pattern *operand `@@`
	Escape  *operand `( "ESCAPE" @@ )?`
}

type operand struct {
	Left *factor     `@@`
	Rest []*opFactor `@@*`
}

type opFactor struct {
	Op    string  `@( "+" | "-" | "*" | "/" | "%" | "DIV" | "MOD" | "&" | "|" | "^" | "<<" | ">>" | "->>" | "->" )`
	Right *factor `@@`
}

type factor struct {
	Unary    []string   `@( "-" | "+" | "~" | "BINARY" )*`
	Case     *caseExpr  `(  @@`
	Cast     *castExpr  ` | @@`
	Convert  *convExpr  ` | @@`
	Interval *interval  ` | @@`
	Call     *funcCall  ` | @@`
	Column   *column    ` | @@`
	Value    *literal   ` | @@`
	Sub      *subquery  ` | "(" @@ ")"`
	Group    []*orCond  ` | "(" @@ ( "," @@ )* ")" )`
}

type caseExpr struct {
	Value *operand   `"CASE" @@?`
	Whens []*caseArm `@@+`
	Else  *orCond    `( "ELSE" @@ )? "END"`
}

type caseArm struct {
	Cond   *orCond `"WHEN" @@`
	Result *orCond `"THEN" @@`
}

type castExpr struct {
	Value *orCond   `"CAST" "(" @@`
	Type  *typeName `"AS" @@ ")"`
}

type convExpr struct {
	Value   *orCond   `"CONVERT" "(" @@`
	Type    *typeName `( "," @@`
	Charset string    `| "USING" @Ident ) ")"`
}

type typeName struct {
	Words []string `@Ident+`
	Size  []string `( "(" @Number ( "," @Number )? ")" )?`
}

type interval struct {
	Value *operand `"INTERVAL" @@`
	Unit  string   `@Ident`
}

// The argument list may be empty; every alternative inside the optional
// group must consume a token.
type funcCall struct {
	Name     string    `@Ident "(" (`
	Star     bool      `  @"*"`
	Distinct bool      `| @"DISTINCT"?`
	Args     []*orCond `  @@ ( "," @@ )* )? ")"`
}

type column struct {
	Parts []string `@( Ident | QuotedIdent ) ( "." @( Ident | QuotedIdent ) )*`
}

type literal struct {
	Number      *string `  @Number`
	Hex         *string `| @Hex`
	String      *string `| @String`
	Placeholder *string `| @Placeholder`
	Null        bool    `| @"NULL"`
	Bool        *string `| @( "TRUE" | "FALSE" )`
}

// Subqueries are validated only for balanced parentheses.
type subquery struct {
	Body []*balanced `"SELECT" @@*`
}

type balanced struct {
	Group []*balanced `  "(" @@* ")"`
	Token *string     `| @~( "(" | ")" )`
}

type trailer struct {
	GroupBy []*operand   `  "GROUP" "BY" @@ ( "," @@ )*`
	Having  *orCond      `| "HAVING" @@`
	OrderBy []*orderTerm `| "ORDER" "BY" @@ ( "," @@ )*`
	Limit   *limitClause `| "LIMIT" @@`
	Lock    *lockClause  `| @@`
}

type orderTerm struct {
	Expr *operand `@@`
	Dir  string   `@( "ASC" | "DESC" )?`
}

type limitClause struct {
	First  string  `@( Number | Placeholder )`
	Second *string `( ( "," | "OFFSET" ) @( Number | Placeholder ) )?`
}

type lockClause struct {
	Mode   string   `  "FOR" @( "UPDATE" | "SHARE" )`
	Tables []string `  ( "OF" @Ident ( "," @Ident )* )?`
	Wait   string   `  @( "NOWAIT" | "SKIP" "LOCKED" )?`
	Share  bool     `| @( "LOCK" "IN" "SHARE" "MODE" )`
}
