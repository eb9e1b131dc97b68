/*
tables.go - Built-in lookup tables for the schedule grammar

PURPOSE:
  Day-name resolution and the default equivalence table. Both are loaded
  once into a Parser at construction time and never mutated afterwards;
  callers needing site-specific vocabulary extend the equivalence table
  through NewParser rather than touching these maps.

DAY TOKENS:
  Full names, plurals, three-letter abbreviations and the single-letter
  column codes used in the source spreadsheets (x = miercoles). The
  composite codes sadofe/safe/dofe expand to multi-day phrases.

EQUIVALENCES:
  Keys are written accent-free because Normalize folds accents before
  applying the table. Rewrites canonicalize ranges ("lunes a viernes" ->
  "lunes-viernes"), composite weekend codes, biweekly markers ("sxm" ->
  "sabado por medio") and monthly Saturday counts ("2 sabados al mes" ->
  "sabados 2").
*/
package schedule

// dayEntry resolves a single day token: either a day index or an
// expansion into further tokens (composite codes).
type dayEntry struct {
	index     int
	expansion string
}

func dayIdx(i int) dayEntry          { return dayEntry{index: i} }
func dayExp(s string) dayEntry       { return dayEntry{index: -1, expansion: s} }
func (e dayEntry) isExpansion() bool { return e.expansion != "" }

var dayMap = map[string]dayEntry{
	"lunes": dayIdx(Monday), "martes": dayIdx(Tuesday), "miercoles": dayIdx(Wednesday),
	"jueves": dayIdx(Thursday), "viernes": dayIdx(Friday),
	"sabado": dayIdx(Saturday), "domingo": dayIdx(Sunday),
	"sabados": dayIdx(Saturday), "domingos": dayIdx(Sunday),
	"feriado": dayIdx(Holiday), "feriados": dayIdx(Holiday),

	"lun": dayIdx(Monday), "mar": dayIdx(Tuesday), "mie": dayIdx(Wednesday),
	"jue": dayIdx(Thursday), "vie": dayIdx(Friday), "sab": dayIdx(Saturday), "dom": dayIdx(Sunday),

	"l": dayIdx(Monday), "m": dayIdx(Tuesday), "x": dayIdx(Wednesday),
	"j": dayIdx(Thursday), "v": dayIdx(Friday), "s": dayIdx(Saturday), "d": dayIdx(Sunday),

	"safe":   dayExp("sabado y feriado"),
	"dofe":   dayExp("domingo y feriado"),
	"sadofe": dayExp("sabado y domingo y feriado"),
}

// dayNames is the inverse mapping used for block ids and log lines.
var dayNames = map[int]string{
	Monday: "lunes", Tuesday: "martes", Wednesday: "miercoles", Thursday: "jueves",
	Friday: "viernes", Saturday: "sabado", Sunday: "domingo", Holiday: "feriado",
}

// weekendTokens trigger the re-segmentation fallback when the main
// pattern finds nothing but the text clearly mentions weekend work.
var weekendTokens = []string{"sabado", "domingo", "feriado", "sadofe", "safe", "dofe"}

// defaultEquivalences is the built-in rewrite table. Applied longest key
// first (see compileEquivalences).
var defaultEquivalences = map[string]string{
	"lunes a viernes": "lunes-viernes", "l a v": "lunes-viernes", "l-v": "lunes-viernes",
	"lunes a sabados": "lunes-sabado", "lunes a sabado": "lunes-sabado", "lunes a sab": "lunes-sabado",
	"lunes a domingos": "lunes-domingo", "lunes a domingo": "lunes-domingo",
	"lunes a jueves": "lunes-jueves", "lunes a miercoles": "lunes-miercoles", "lunes a martes": "lunes-martes",
	"martes a viernes": "martes-viernes",
	"lunes martes y miercoles": "lunes y martes y miercoles",

	"sabado domingo feriado": "sabado y domingo y feriado",
	"sabado feriado":         "sabado y feriado",
	"domingo feriado":        "domingo y feriado",
	"sado fe":                "sabado y domingo y feriado",
	"sadofe":                 "sabado y domingo y feriado",
	"safe":                   "sabado y feriado",
	"dofe":                   "domingo y feriado",
	"feriados":               "feriado",

	"sxm": "sabado por medio", "dxm": "domingo por medio",
	"sabados por medio": "sabado por medio",

	"1 sabado al mes": "sabados 1", "2 sabados al mes": "sabados 2",
	"3 sabados al mes": "sabados 3", "4 sabados al mes": "sabados 4",
	"1 sab al mes": "sabados 1", "2 sab al mes": "sabados 2",
	"3 sab al mes": "sabados 3", "4 sab al mes": "sabados 4",
	"1 s al mes": "sabados 1", "2 s al mes": "sabados 2",
	"3 s al mes": "sabados 3", "4 s al mes": "sabados 4",
}
