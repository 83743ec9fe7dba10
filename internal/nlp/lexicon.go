package nlp

// Fixed lexicons for the two supported languages. These are deliberately
// small hand-picked lists: the engine must behave identically on every run
// and on machines with no model downloads available.

var stopwordsEN = toSet([]string{
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "when",
	"at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "to", "from",
	"up", "down", "in", "out", "on", "off", "over", "under", "again",
	"further", "is", "am", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did", "will", "would", "shall",
	"should", "can", "could", "may", "might", "must", "of", "that", "this",
	"these", "those", "i", "you", "he", "she", "it", "we", "they", "my",
	"your", "his", "her", "its", "our", "their", "what", "which", "who",
	"how", "not", "no", "nor", "so", "too", "very", "just", "there",
})

var stopwordsSW = toSet([]string{
	"na", "ya", "wa", "za", "la", "cha", "vya", "ni", "si", "kwa", "katika",
	"kutoka", "hadi", "mpaka", "kama", "kwamba", "ili", "lakini", "au",
	"ama", "pia", "tena", "sana", "tu", "je", "hii", "hiyo", "hilo", "hili",
	"huyu", "huyo", "hao", "hawa", "yule", "wale", "mimi", "wewe", "yeye",
	"sisi", "ninyi", "wao", "yangu", "yako", "yake", "yetu", "yenu", "yao",
	"huu", "huo", "ile", "ipi", "gani", "nini", "nani", "wapi", "lini",
	"kuwa", "kuna", "hakuna", "bado", "sasa", "kila",
})

var positiveEN = toSet([]string{
	"good", "great", "excellent", "amazing", "wonderful", "fantastic",
	"perfect", "outstanding", "happy", "satisfied", "pleased", "helpful",
	"friendly", "clean", "easy", "fast", "quick", "affordable", "cheap",
	"reliable", "improved", "better", "best", "love", "like", "enjoy",
	"comfortable", "safe", "convenient", "efficient",
})

var negativeEN = toSet([]string{
	"bad", "poor", "terrible", "awful", "horrible", "worst", "worse",
	"unhappy", "dissatisfied", "disappointed", "rude", "dirty", "hard",
	"difficult", "slow", "expensive", "costly", "unreliable", "broken",
	"problem", "problems", "issue", "issues", "hate", "dislike", "unsafe",
	"inconvenient", "confusing", "late", "lacking",
})

var positiveSW = toSet([]string{
	"nzuri", "bora", "vizuri", "safi", "salama", "rahisi", "haraka",
	"nafuu", "imara", "furaha", "nimefurahi", "furahi", "radhi",
	"kuridhika", "nimeridhika", "msaada", "karibu", "upendo", "penda",
	"napenda", "starehe", "heri", "fanaka", "maendeleo", "kamili",
})

var negativeSW = toSet([]string{
	"mbaya", "vibaya", "hatari", "ghali", "vigumu", "ngumu", "polepole",
	"chafu", "tatizo", "matatizo", "shida", "hasira", "huzuni",
	"sikufurahi", "chuki", "nachukia", "chukia", "upungufu", "hafifu",
	"dhaifu", "kuchelewa", "usumbufu", "karaha", "duni",
})

// Affirmative/negative vocabularies for yes_no answers, per language.
var affirmativeTokens = map[string]map[string]struct{}{
	"en": toSet([]string{"yes", "yeah", "yep", "sure", "definitely", "absolutely", "correct", "right", "true"}),
	"sw": toSet([]string{"ndio", "ndiyo", "naam", "sawa", "kweli"}),
}

var negativeTokens = map[string]map[string]struct{}{
	"en": toSet([]string{"no", "nope", "nah", "not", "never", "negative", "incorrect", "wrong", "false"}),
	"sw": toSet([]string{"hapana", "la", "sio", "si", "siyo"}),
}

// Stopwords returns the stopword set for lang. Unknown languages get the
// English list so tokenization always has a filter of record.
func Stopwords(lang string) map[string]struct{} {
	if lang == "sw" {
		return stopwordsSW
	}
	return stopwordsEN
}

// Affirmative reports whether token is an affirmative marker in lang or in
// the other supported language (answers frequently mix the two).
func Affirmative(token string) bool {
	for _, set := range affirmativeTokens {
		if _, ok := set[token]; ok {
			return true
		}
	}
	return false
}

// Negative reports whether token is a negative marker in any supported
// language.
func Negative(token string) bool {
	for _, set := range negativeTokens {
		if _, ok := set[token]; ok {
			return true
		}
	}
	return false
}

// Polarity scores text with the language's sentiment marker lists: positive
// count minus negative count. Zero means neutral (equal counts or no
// markers at all).
func Polarity(text, lang string) int {
	pos, neg := positiveEN, negativeEN
	if lang == "sw" {
		pos, neg = positiveSW, negativeSW
	}
	score := 0
	for _, tok := range Fields(text) {
		if _, ok := pos[tok]; ok {
			score++
		}
		if _, ok := neg[tok]; ok {
			score--
		}
	}
	return score
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
