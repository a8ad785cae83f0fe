package corevm

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders o in its reparseable printed form (§4.3): `read(print(v))
// = v` under the VM's equality rules for every value the reader can
// itself produce.
func Print(o *Object) string {
	var b strings.Builder
	printTo(&b, o)
	return b.String()
}

func printTo(b *strings.Builder, o *Object) {
	if o == nil {
		b.WriteString("#<nil>")
		return
	}
	switch o.kind {
	case KindNumber:
		b.WriteString(formatNumber(NumberValue(o)))
	case KindString:
		printString(b, StringValue(o))
	case KindSymbol:
		b.WriteString(SymbolName(o))
	case KindPair:
		printPair(b, o)
	case KindArray:
		b.WriteString("#(")
		for i, item := range ArrayItems(o) {
			if i > 0 {
				b.WriteByte(' ')
			}
			printTo(b, item)
		}
		b.WriteByte(')')
	case KindDictionary:
		b.WriteString("##[")
		for i, slot := range DictEntries(o) {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('(')
			printTo(b, slot.key)
			b.WriteString(" . ")
			printTo(b, slot.value)
			b.WriteByte(')')
		}
		b.WriteByte(']')
	case KindBuffer:
		b.WriteString("#x")
		for _, by := range BufferBytes(o) {
			fmt.Fprintf(b, "%02x", by)
		}
	case KindPort:
		fmt.Fprintf(b, "#<port %p>", o)
	case KindStream:
		fmt.Fprintf(b, "#<stream %p>", o)
	case KindEnvironment:
		fmt.Fprintf(b, "#<environment %p>", o)
	case KindProcedure:
		label := ProcLabel(o)
		if label == "" {
			fmt.Fprintf(b, "#<procedure %p>", o)
		} else {
			fmt.Fprintf(b, "#<procedure %s>", label)
		}
	case KindNativeProcedure:
		fmt.Fprintf(b, "#<native-procedure %s>", NativeName(o))
	case KindMacro:
		label := ProcLabel(o)
		if label == "" {
			fmt.Fprintf(b, "#<macro %p>", o)
		} else {
			fmt.Fprintf(b, "#<macro %s>", label)
		}
	case KindExtension:
		fmt.Fprintf(b, "#<%s %s>", ExtensionClass(o), ExtensionID(o))
	case KindSourceFile:
		fmt.Fprintf(b, "#<source-file %s>", SourceFilePath(o))
	case KindSourceMapping:
		fmt.Fprintf(b, "#<source-mapping %s>", MappingRange(o))
	default:
		fmt.Fprintf(b, "#<%s %p>", o.kind, o)
	}
}

// formatNumber follows §4.3: print with `%.15g`, escalating to `%.17g`
// only when the shorter form wouldn't round-trip back to the same
// float64. Integral values print without a decimal point.
func formatNumber(v float64) string {
	if v == float64(int64(v)) && !isNegZero(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'g', 15, 64)
	if parsed, err := strconv.ParseFloat(s, 64); err != nil || parsed != v {
		s = strconv.FormatFloat(v, 'g', 17, 64)
	}
	return s
}

func isNegZero(v float64) bool { return v == 0 && 1/v < 0 }

func printString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
}

// quoteShorthand maps the reader-shorthand forms back to their
// printed punctuation, so `(quote x)` prints as `'x` rather than
// round-tripping through its list form.
var quoteShorthand = map[*Object]string{}

func initQuoteShorthand() {
	quoteShorthand[quoteSym] = "'"
	quoteShorthand[quasiSym] = "`"
	quoteShorthand[unquoteSym] = ","
	quoteShorthand[unquoteSplS] = ",@"
}

func printPair(b *strings.Builder, o *Object) {
	if len(quoteShorthand) == 0 {
		initQuoteShorthand()
	}
	if o.kind == KindPair {
		if head := Car(o); head.kind == KindSymbol {
			if prefix, ok := quoteShorthand[head]; ok {
				if rest := Cdr(o); rest.kind == KindPair && Cdr(rest) == theNil {
					b.WriteString(prefix)
					printTo(b, Car(rest))
					return
				}
			}
		}
	}
	b.WriteByte('(')
	first := true
	cur := o
	for cur.kind == KindPair && cur != theNil {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		printTo(b, Car(cur))
		cur = Cdr(cur)
	}
	if cur != theNil {
		b.WriteString(" . ")
		printTo(b, cur)
	}
	b.WriteByte(')')
}

// PrettyString renders o as an indented tree, grounded in the
// teacher's tree-printer idiom, supplemented for debugging rather than
// for the reparseable Print path above.
func PrettyString(o *Object) string {
	var b strings.Builder
	prettyTo(&b, o, 0)
	return b.String()
}

func prettyTo(b *strings.Builder, o *Object, depth int) {
	indent := strings.Repeat("  ", depth)
	if o == nil || o.kind != KindPair || o == theNil {
		fmt.Fprintf(b, "%s%s\n", indent, Print(o))
		return
	}
	fmt.Fprintf(b, "%s(\n", indent)
	cur := o
	for cur.kind == KindPair && cur != theNil {
		prettyTo(b, Car(cur), depth+1)
		cur = Cdr(cur)
	}
	if cur != theNil {
		fmt.Fprintf(b, "%s. %s\n", strings.Repeat("  ", depth+1), Print(cur))
	}
	fmt.Fprintf(b, "%s)\n", indent)
}

// Dump is Print prefixed with the object's Kind: a quick one-line
// debug view.
func Dump(o *Object) string {
	return fmt.Sprintf("%s: %s", o.Kind(), Print(o))
}
