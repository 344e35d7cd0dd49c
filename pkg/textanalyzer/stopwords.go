package textanalyzer

// englishStopWords is a subset of the common English function words.
var englishStopWords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "against": {}, "all": {}, "am": {}, "an": {}, "and": {},
	"any": {}, "are": {}, "as": {}, "at": {}, "be": {}, "because": {}, "been": {}, "before": {}, "being": {}, "below": {},
	"between": {}, "both": {}, "but": {}, "by": {}, "can": {}, "did": {}, "do": {}, "does": {}, "doing": {}, "down": {},
	"during": {}, "each": {}, "few": {}, "for": {}, "from": {}, "further": {}, "had": {}, "has": {}, "have": {}, "having": {},
	"he": {}, "her": {}, "here": {}, "hers": {}, "herself": {}, "him": {}, "himself": {}, "his": {}, "how": {}, "i": {},
	"if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {}, "itself": {}, "just": {}, "me": {}, "more": {},
	"most": {}, "my": {}, "myself": {}, "no": {}, "nor": {}, "not": {}, "now": {}, "of": {}, "off": {}, "on": {},
	"once": {}, "only": {}, "or": {}, "other": {}, "our": {}, "ours": {}, "ourselves": {}, "out": {}, "over": {}, "own": {},
	"same": {}, "she": {}, "should": {}, "so": {}, "some": {}, "such": {}, "than": {}, "that": {}, "the": {}, "their": {},
	"theirs": {}, "them": {}, "themselves": {}, "then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"to": {}, "too": {}, "under": {}, "until": {}, "up": {}, "very": {}, "was": {}, "we": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "while": {}, "who": {}, "whom": {}, "why": {}, "will": {}, "with": {}, "would": {},
	"you": {}, "your": {}, "yours": {}, "yourself": {}, "yourselves": {},
}

var italianStopWords = map[string]struct{}{
	"a": {}, "ad": {}, "al": {}, "allo": {}, "ai": {}, "agli": {}, "all": {}, "agl": {}, "alla": {}, "alle": {},
	"con": {}, "col": {}, "coi": {}, "da": {}, "dal": {}, "dallo": {}, "dai": {}, "dagli": {}, "dall": {}, "dagl": {}, "dalla": {}, "dalle": {},
	"di": {}, "del": {}, "dello": {}, "dei": {}, "degli": {}, "dell": {}, "degl": {}, "della": {}, "delle": {},
	"e": {}, "ed": {}, "in": {}, "nel": {}, "nello": {}, "nei": {}, "negli": {}, "nell": {}, "negl": {}, "nella": {}, "nelle": {},
	"su": {}, "sul": {}, "sullo": {}, "sui": {}, "sugli": {}, "sull": {}, "sugl": {}, "sulla": {}, "sulle": {},
	"per": {}, "tra": {}, "contro": {}, "io": {}, "tu": {}, "lui": {}, "lei": {}, "noi": {}, "voi": {}, "loro": {},
	"mio": {}, "mia": {}, "miei": {}, "mie": {}, "tuo": {}, "tua": {}, "tuoi": {}, "tue": {}, "suo": {}, "sua": {}, "suoi": {}, "sue": {},
	"nostro": {}, "nostra": {}, "nostri": {}, "nostre": {}, "vostro": {}, "vostra": {}, "vostri": {}, "vostre": {},
	"mi": {}, "ti": {}, "ci": {}, "vi": {}, "lo": {}, "la": {}, "li": {}, "le": {}, "gli": {}, "ne": {},
	"il": {}, "un": {}, "uno": {}, "una": {}, "ma": {}, "se": {}, "perché": {}, "anche": {}, "come": {},
	"dov": {}, "dove": {}, "che": {}, "chi": {}, "cui": {}, "non": {}, "più": {}, "quale": {}, "quanto": {}, "quanti": {},
	"quanta": {}, "quante": {}, "quello": {}, "quelli": {}, "quella": {}, "quelle": {}, "questo": {}, "questi": {},
	"questa": {}, "queste": {}, "si": {}, "ho": {}, "hai": {}, "ha": {}, "abbiamo": {}, "avete": {}, "hanno": {},
	"abbia": {}, "abbiate": {}, "abbiano": {}, "avrò": {}, "avrai": {}, "avrà": {}, "avremo": {}, "avrete": {}, "avranno": {},
	"avrei": {}, "avresti": {}, "avrebbe": {}, "avremmo": {}, "avreste": {}, "avrebbero": {}, "avevo": {}, "avevi": {},
	"aveva": {}, "avevamo": {}, "avevate": {}, "avevano": {}, "ebbi": {}, "avesti": {}, "ebbe": {}, "avemmo": {},
	"aveste": {}, "ebbero": {}, "fui": {}, "fosti": {}, "fu": {}, "fummo": {}, "foste": {}, "furono": {},
	"ero": {}, "eri": {}, "era": {}, "eravamo": {}, "eravate": {}, "erano": {}, "sarei": {}, "saresti": {},
	"sarebbe": {}, "saremmo": {}, "sareste": {}, "sarebbero": {}, "sono": {}, "sei": {}, "è": {}, "siamo": {},
	"siete": {}, "sia": {}, "siate": {}, "siano": {}, "sto": {}, "stai": {}, "sta": {}, "stiamo": {}, "state": {}, "stanno": {},
}

var stopWordsByLanguage = map[string]map[string]struct{}{
	"":        englishStopWords,
	"english": englishStopWords,
	"italian": italianStopWords,
}

// IsStopWord reports whether tok is a stop word of language.
// Unknown languages have no stop words.
func IsStopWord(tok, language string) bool {
	_, ok := stopWordsByLanguage[language][tok]
	return ok
}

// FilterStopWords removes the stop words of language from tokens.
func FilterStopWords(tokens []string, language string) []string {
	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !IsStopWord(token, language) {
			filtered = append(filtered, token)
		}
	}
	return filtered
}
