package inline

// accentTables maps each one-letter accent command of spec.md section
// 4.4 to a base-letter → accented-letter table. Only the Latin letters
// these commands actually combine with in practice are listed; an
// unmapped base letter is returned unchanged rather than erroring — the
// resolved open question of spec.md section 9 carries the source's own
// behaviour of treating a missing/unmapped argument as the literal
// character.
var accentTables = map[string]map[rune]rune{
	"`": {'a': 'à', 'e': 'è', 'i': 'ì', 'o': 'ò', 'u': 'ù', 'A': 'À', 'E': 'È', 'I': 'Ì', 'O': 'Ò', 'U': 'Ù'},
	"'": {'a': 'á', 'e': 'é', 'i': 'í', 'o': 'ó', 'u': 'ú', 'y': 'ý', 'A': 'Á', 'E': 'É', 'I': 'Í', 'O': 'Ó', 'U': 'Ú', 'Y': 'Ý'},
	"^": {'a': 'â', 'e': 'ê', 'i': 'î', 'o': 'ô', 'u': 'û', 'A': 'Â', 'E': 'Ê', 'I': 'Î', 'O': 'Ô', 'U': 'Û'},
	"~": {'a': 'ã', 'n': 'ñ', 'o': 'õ', 'A': 'Ã', 'N': 'Ñ', 'O': 'Õ'},
	`"`: {'a': 'ä', 'e': 'ë', 'i': 'ï', 'o': 'ö', 'u': 'ü', 'A': 'Ä', 'E': 'Ë', 'I': 'Ï', 'O': 'Ö', 'U': 'Ü'},
	".": {'z': 'ż', 'Z': 'Ż', 'c': 'ċ', 'C': 'Ċ'},
	"=": {'a': 'ā', 'e': 'ē', 'i': 'ī', 'o': 'ō', 'u': 'ū'},
	"c": {'c': 'ç', 'C': 'Ç', 's': 'ş', 'S': 'Ş', 't': 'ţ', 'T': 'Ţ'},
	"v": {'c': 'č', 's': 'š', 'z': 'ž', 'r': 'ř', 'C': 'Č', 'S': 'Š', 'Z': 'Ž', 'R': 'Ř'},
	"u": {'a': 'ă', 'g': 'ğ', 'A': 'Ă', 'G': 'Ğ'},
	"H": {'o': 'ő', 'u': 'ű', 'O': 'Ő', 'U': 'Ű'},
}

// applyAccent applies the named accent to base, falling back to base
// itself when there is no entry for it.
func applyAccent(name string, base rune) rune {
	table, ok := accentTables[name]
	if !ok {
		return base
	}
	if accented, ok := table[base]; ok {
		return accented
	}
	return base
}
