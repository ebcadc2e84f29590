package domain

// WordListsVersion identifica nos logs as listas embutidas no binário.
const WordListsVersion = "2024.1"

// WordLists contém as listas estáticas, em minúsculas, usadas pelo filtro de conteúdo.
type WordLists struct {
	Version string
	Banned  []string
	Adult   []string
}

// DefaultWordLists retorna uma cópia nova das listas embutidas.
func DefaultWordLists() WordLists {
	return WordLists{
		Version: WordListsVersion,
		Banned:  append([]string(nil), bannedWords...),
		Adult:   append([]string(nil), adultKeywords...),
	}
}

var bannedWords = []string{
	"كس", "زب", "طيز", "حمار", "ديوث", "عاهرة", "ساقطة", "شرموطة",
	"تناك", "نيك", "سحاق", "لواط", "جنس", "جنسي", "جنسية",
	"بغي", "فاجرة", "قحبة", "دعارة", "فاحشة", "فسق", "فاسق",
	"ملعون", "ملعونة", "خنزير", "خنزيرة", "كلب", "كلبة",
	"fuck", "shit", "ass", "bitch", "whore", "slut", "porn", "sex",
	"xxx", "nude", "naked", "cock", "pussy", "dick", "cum",
	"rape", "pedophile", "pedo", "child", "minor",
}

var adultKeywords = []string{
	"إباحي", "اباحي", "جنسي", "جنسية", "عاري", "عارية", "عري",
	"جسد", "ثدي", "ثديين", "صدر", "مثير", "مثيرة", "إثارة",
	"جنس", "ممارسة", "علاقة", "حميمية", "حميم",
	"adult", "sex", "porn", "xxx", "nude", "naked", "erotic",
}
