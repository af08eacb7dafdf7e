package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Column identifies a roster field.
type Column string

const (
	ColName         Column = "NOME"
	ColTaxID        Column = "CPF"
	ColRegistration Column = "MATRICULA"
	ColRole         Column = "FUNCAO"
	ColPost         Column = "POSTO"
	ColAdmission    Column = "ADMISSAO"
	ColBranch       Column = "FILIAL"
	ColBranchTaxID  Column = "CNPJ"
	ColAddress      Column = "ENDERECO"
	ColCity         Column = "CIDADE"
	ColRotation     Column = "JORNADA"
	ColFirstRest    Column = "PRIMEIRO DIA DE FOLGA"
)

// RotationHeader is the rotation column title written to templates.
const RotationHeader = "JORNADA (5X1 / 5X2 / 6X1 FIXO / 6X1 INTERCALADA / 12X36)"

// templateHeaders is the column order of the blank template (A-L).
var templateHeaders = []string{
	"NOME", "CPF", "MATRICULA", "FUNÇÃO", "POSTO", "ADMISSÃO",
	"FILIAL", "CNPJ", "ENDEREÇO", "CIDADE", RotationHeader, "PRIMEIRO DIA DE FOLGA",
}

// aliases are tried in order; the first alias matching any header wins.
var aliases = map[Column][]string{
	ColName:         {"NOME", "NAME"},
	ColRegistration: {"MATRICULA"},
	ColAdmission:    {"ADMISSAO"},
	ColTaxID:        {"CPF"},
	ColBranch:       {"FILIAL", "EMPRESA"},
	ColBranchTaxID:  {"CNPJ"},
	ColRole:         {"FUNCAO", "CARGO"},
	ColPost:         {"POSTO"},
	ColAddress:      {"ENDERECO"},
	ColCity:         {"CIDADE", "CITY"},
	ColRotation:     {RotationHeader, "TIPO DE JORNADA", "JORNADA", "ESCALA"},
	ColFirstRest:    {"PRIMEIRO DIA DE FOLGA", "1 FOLGA", "PRIMEIRA FOLGA"},
}

// NormalizeHeader folds case and drops accents, spaces and punctuation, so
// "Função", "FUNCAO" and "funcao." compare equal.
func NormalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// columnIndex maps each known column to its position in headers.
func columnIndex(headers []string) map[Column]int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	out := make(map[Column]int)
	for col, names := range aliases {
	search:
		for _, name := range names {
			want := NormalizeHeader(name)
			for i, got := range normalized {
				if got == want {
					out[col] = i
					break search
				}
			}
		}
	}
	return out
}

// IsTaxIDLike reports whether s looks like a CPF rather than a post name:
// more than 70% of its characters are digits, dots or dashes.
func IsTaxIDLike(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	total, valid := 0, 0
	for _, r := range s {
		total++
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			valid++
		}
	}
	return float64(valid)/float64(total) > 0.7
}
