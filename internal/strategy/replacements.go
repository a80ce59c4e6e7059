package strategy

import "regexp"

// replacement is one softening rule. Strong rules target the terms
// that dominate a dimension's score; light intensity applies only
// those, moderate applies the full set, aggressive additionally drops
// lines that matched a strong rule.
type replacement struct {
	pattern *regexp.Regexp
	with    string
	strong  bool
}

func rule(expr, with string, strong bool) replacement {
	return replacement{
		pattern: regexp.MustCompile(`(?i)\b` + expr + `\b`),
		with:    with,
		strong:  strong,
	}
}

// replacementRules maps each content dimension to its softening rules.
// Keyed by the same dimension names the feature vector uses.
var replacementRules = map[string][]replacement{
	"violence": {
		rule(`kill(s|ed|ing)?`, "confront", true),
		rule(`murder(s|ed|ing)?`, "threaten", true),
		rule(`stab(s|bed|bing)?`, "shove", true),
		rule(`shoot(s|ing)?`, "warn", true),
		rule(`shot`, "warned", true),
		rule(`strangl(e|es|ed|ing)`, "restrain", true),
		rule(`punch(es|ed|ing)?`, "push", false),
		rule(`beat(s|en|ing)?`, "scold", false),
		rule(`attack(s|ed|ing)?`, "approach", false),
		rule(`fight(s|ing)?`, "argue", false),
	},
	"gore": {
		rule(`entrails|guts|viscera`, "debris", true),
		rule(`dismember(s|ed|ing|ment)?`, "damage", true),
		rule(`decapitat(e|es|ed|ion)`, "strike", true),
		rule(`corpse(s)?`, "figure", true),
		rule(`blood(y|ied|soaked)?`, "dirt", false),
		rule(`gore`, "mess", false),
		rule(`wound(s|ed)?`, "bruise", false),
	},
	"sex_act": {
		rule(`sex`, "intimacy", true),
		rule(`make(s)? love`, "embrace", true),
		rule(`making love`, "embracing", true),
		rule(`moan(s|ed|ing)?`, "sigh", false),
		rule(`seduc(e|es|ed|tion|tive)`, "charm", false),
	},
	"nudity": {
		rule(`naked`, "disheveled", true),
		rule(`nude`, "disheveled", true),
		rule(`undress(es|ed|ing)?`, "turn away", true),
		rule(`strip(s|ped|ping)?`, "step back", false),
		rule(`topless`, "windblown", false),
	},
	"profanity": {
		rule(`fuck(s|ed|ing|er|ers)?`, "darn", true),
		rule(`motherfucker(s)?`, "fool", true),
		rule(`cunt(s)?`, "jerk", true),
		rule(`shit(s|ty|ting)?`, "crud", true),
		rule(`asshole(s)?`, "fool", false),
		rule(`bitch(es)?`, "jerk", false),
		rule(`bastard(s)?`, "scoundrel", false),
		rule(`damn(ed|it)?`, "darn", false),
	},
	"drugs": {
		rule(`heroin|cocaine|meth(amphetamine)?|crack`, "contraband", true),
		rule(`overdos(e|es|ed|ing)`, "collapse", true),
		rule(`inject(s|ed|ing)?`, "take", true),
		rule(`snort(s|ed|ing)?`, "take", true),
		rule(`stoned|wasted`, "dazed", false),
		rule(`drunk(en)?`, "tired", false),
		rule(`joint(s)?`, "cigarette", false),
	},
	"child_risk": {
		rule(`abus(e|es|ed|ing)`, "mistreat", true),
		rule(`kidnap(s|ped|ping)?`, "take away", true),
		rule(`scream(s|ed|ing)?`, "call out", false),
		rule(`terrif(y|ies|ied|ying)`, "unsettle", false),
	},
}
