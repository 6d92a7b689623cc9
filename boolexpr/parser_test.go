package boolexpr

import (
	"reflect"
	"testing"

	"github.com/alecthomas/participle/v2"
)

func TestParseWhere_disjunction(t *testing.T) {
	clause, err := SqlParser{}.ParseWhere(`where a<>3 or a<>2`)
	try(t, err)

	eq(t, `a<>3 or a<>2`, String(clause.Pred))
	eq(t, ``, clause.Tail)
	eq(t, true, clause.Pred.(Source).IsDisjunction())
}

func TestParseWhere_conjunction(t *testing.T) {
	clause, err := SqlParser{}.ParseWhere(`WHERE a = ? AND b IN (1, 2)`)
	try(t, err)

	eq(t, `a = ? AND b IN (1, 2)`, String(clause.Pred))
	eq(t, false, clause.Pred.(Source).IsDisjunction())
}

func TestParseWhere_trailing_clauses(t *testing.T) {
	test := func(input, pred, tail string) {
		t.Helper()
		clause, err := SqlParser{}.ParseWhere(input)
		try(t, err)
		eq(t, pred, String(clause.Pred))
		eq(t, tail, clause.Tail)
	}

	test(`where a!=3 or a!=2 limit 1`, `a!=3 or a!=2`, `limit 1`)
	test(`WHERE a = ? ORDER BY c DESC LIMIT 5, 10`, `a = ?`, `ORDER BY c DESC LIMIT 5, 10`)
	test(`where t1.name like 'x%' group by t1.id having count(*) > 1`, `t1.name like 'x%'`, `group by t1.id having count(*) > 1`)
	test(`where id = ? limit ? offset ?`, `id = ?`, `limit ? offset ?`)
	test(`where id = ? for update`, `id = ?`, `for update`)
	test(`where id = ? for update nowait`, `id = ?`, `for update nowait`)
	test(`where id = ? FOR UPDATE OF t1 SKIP LOCKED`, `id = ?`, `FOR UPDATE OF t1 SKIP LOCKED`)
	test(`where id = ? for share`, `id = ?`, `for share`)
	test(`where id = ? lock in share mode`, `id = ?`, `lock in share mode`)
}

func TestParseWhere_comments(t *testing.T) {
	test := func(input, pred, tail string) {
		t.Helper()
		clause, err := SqlParser{}.ParseWhere(input)
		try(t, err)
		eq(t, pred, String(clause.Pred))
		eq(t, tail, clause.Tail)
	}

	test(`where a = 1 -- note`, `a = 1`, ``)
	test(`where a = 1 order by a -- note`, `a = 1`, `order by a`)
	test(`where a = 1 /* keep */ limit 1`, `a = 1`, `/* keep */ limit 1`)
	test(`where a = '--x' -- note`, `a = '--x'`, ``)
	test("where a = 1 -- note\n and b = 2", "a = 1 -- note\n and b = 2", ``)

	clause, err := SqlParser{}.ParseWhere(`where a = 1 -- note`)
	try(t, err)
	eq(t, `WHERE a = 1 limit 1`, Clause{Pred: clause.Pred, Tail: clause.Tail + ` limit 1`}.String())
}

func TestStripLineComments(t *testing.T) {
	test := func(input, exp string) {
		t.Helper()
		out, err := StripLineComments(input)
		try(t, err)
		eq(t, exp, out)
	}

	test(``, ``)
	test(`order by a -- x`, `order by a`)
	test("a -- x\nb", "a \nb")
	test(`a = '--x'`, `a = '--x'`)
	test("`--` = 1", "`--` = 1")
	test(`/* x */ a`, `/* x */ a`)

	_, err := StripLineComments(`a # b`)
	if err == nil {
		t.Fatalf(`expected an unlexable character to fail`)
	}
}

func TestParseWhere_predicates(t *testing.T) {
	inputs := []string{
		"where `id` = ?",
		"where t1.`deleted`=0",
		`where (a = 1 or b is not null) and c between 1 and 5`,
		`where not exists (select 1 from t where t.x = y.x)`,
		`where id in (select uid from t where x = 1)`,
		`where id not in (?, ?, ?)`,
		`where name not like '%x' escape '!'`,
		`where a + 1 > b * 2 and -c < 0`,
		`where date(create_time) >= '2020-01-01'`,
		`where flag is true or flag is null`,
		`where a = 'it''s' and b = "q"`,
		`where order_id = 1`,
		`WHERE a <=> NULL && b || c = 1`,
		`where name = :name`,
		`where create_time < now()`,
		`where create_time > date_sub(curdate(), interval 1 day)`,
		`where create_time > now() - interval 7 day`,
		`where rand() < 0.5 and count(*) > 1 and count(distinct a) > 1`,
		`where case when a = 1 then 'x' else 'y' end = 'x'`,
		`where case status when 1 then true end`,
		`where cast(a as char) = '1'`,
		`where cast(price as decimal(10, 2)) > 1 and cast(b as unsigned) = 1`,
		`where convert(name using utf8mb4) = ? and convert(a, char) = ?`,
		`where (a, b) in ((1,2),(3,4))`,
		`where (a, b) = (?, ?)`,
		`where a div 2 = 1 and b mod 3 = 0 and mod(c, 2) = 0`,
		`where a & 4 = 4 or b | 1 > 0 or c ^ 2 = 0 or d << 1 > 0 or ~e < 0`,
		`where binary name = 'X'`,
		`where flags = x'0F' or bits = b'101' or mask = 0xFF`,
		`where doc->>'$.name' = ?`,
		`where is_ok is not unknown`,
		`where name rlike '^a'`,
		`WHERE CASE WHEN A THEN 1 END = 1 AND Create_Time < NOW()`,
	}

	for _, input := range inputs {
		_, err := SqlParser{}.ParseWhere(input)
		if err != nil {
			t.Fatalf("failed to parse %q: %+v", input, err)
		}
	}
}

func TestParseWhere_malformed(t *testing.T) {
	inputs := []string{
		``,
		`where`,
		`where a =`,
		`where (a = 1`,
		`where a = 1 b`,
		`where and a = 1`,
		`group by a`,
		`where a in ()`,
	}

	for _, input := range inputs {
		_, err := SqlParser{}.ParseWhere(input)
		if err == nil {
			t.Fatalf("expected parsing %q to fail", input)
		}
	}
}

func TestParseCond(t *testing.T) {
	expr, err := SqlParser{}.ParseCond("  (t1.`deleted`=0 OR t1.`deleted` IS NULL)  ")
	try(t, err)
	eq(t, "(t1.`deleted`=0 OR t1.`deleted` IS NULL)", String(expr))

	expr, err = SqlParser{}.ParseCond(`x=1 or y < now() -- note`)
	try(t, err)
	eq(t, `x=1 or y < now()`, String(expr))
	eq(t, true, expr.(Source).IsDisjunction())

	_, err = SqlParser{}.ParseCond(`a =`)
	if err == nil {
		t.Fatalf(`expected a dangling comparison to fail`)
	}

	_, err = SqlParser{}.ParseCond(`where a = 1`)
	if err == nil {
		t.Fatalf(`expected a condition with a where keyword to fail`)
	}
}

func TestClause_String(t *testing.T) {
	clause := Clause{
		Pred: And{
			Left:  Source{Text: "`deleted`=0"},
			Right: Group{Inner: Source{Text: `a<>3 or a<>2`}},
		},
		Tail: `limit 1`,
	}
	eq(t, "WHERE `deleted`=0 AND (a<>3 or a<>2) limit 1", clause.String())

	eq(t, `WHERE x=1`, Clause{Pred: Source{Text: `x=1`}}.String())
	eq(t, ``, String(nil))
}

type emptyArm struct {
	Name string `"(" ( @Ident? | @Number ) ")"`
}

func TestParseString_recovers(t *testing.T) {
	parser := participle.MustBuild[emptyArm](parserOptions...)

	out, err := parseString(parser, `()`)
	if err == nil {
		t.Fatalf(`expected a grammar panic to be returned as an error`)
	}
	eq(t, (*emptyArm)(nil), out)

	out, err = parseString(parser, `(a)`)
	try(t, err)
	eq(t, `a`, out.Name)
}

func try(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%+v", err)
	}
}

func eq(t testing.TB, exp, act interface{}) {
	t.Helper()
	if !reflect.DeepEqual(exp, act) {
		t.Fatalf("expected: %#v\nactual: %#v\n", exp, act)
	}
}
