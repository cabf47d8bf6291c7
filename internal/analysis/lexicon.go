package analysis

// Valence lexicon for the sentiment scorer. Values follow the usual
// lexicon convention: roughly -4..+4, scaled before normalization.
var valence = map[string]float64{
	// positive
	"good":        1.9,
	"great":       3.1,
	"nice":        1.8,
	"awesome":     3.1,
	"amazing":     2.8,
	"excellent":   2.7,
	"perfect":     2.7,
	"best":        3.2,
	"love":        3.2,
	"loved":       2.9,
	"like":        1.5,
	"liked":       1.6,
	"enjoy":       2.0,
	"enjoyed":     2.3,
	"happy":       2.7,
	"fun":         2.3,
	"funny":       1.9,
	"beautiful":   2.9,
	"brilliant":   2.8,
	"helpful":     1.9,
	"useful":      1.9,
	"thanks":      1.9,
	"thank":       2.1,
	"appreciate":  2.0,
	"appreciated": 2.0,
	"wow":         2.8,
	"cool":        1.3,
	"win":         2.8,
	"winner":      2.8,
	"glad":        2.0,
	"favorite":    2.0,
	"favourite":   2.0,
	"fantastic":   2.6,
	"incredible":  2.4,
	"legend":      2.2,
	"underrated":  1.2,
	"quality":     1.4,
	"clear":       1.1,
	"inspiring":   2.3,
	"respect":     1.8,

	// negative
	"bad":            -2.5,
	"terrible":       -2.1,
	"awful":          -2.0,
	"horrible":       -2.5,
	"hate":           -2.7,
	"hated":          -2.4,
	"worst":          -3.1,
	"boring":         -1.3,
	"waste":          -1.8,
	"wrong":          -2.1,
	"poor":           -2.1,
	"annoying":       -1.8,
	"stupid":         -2.4,
	"dumb":           -2.3,
	"trash":          -2.2,
	"garbage":        -2.1,
	"useless":        -1.8,
	"disappointed":   -2.1,
	"disappointing":  -2.2,
	"sad":            -2.1,
	"angry":          -2.3,
	"scam":           -2.6,
	"fake":           -1.9,
	"cringe":         -1.6,
	"misleading":     -1.9,
	"clickbait":      -1.7,
	"broken":         -1.6,
	"confusing":      -1.3,
	"lost":           -1.3,
	"fail":           -2.3,
	"failed":         -2.3,
	"lie":            -1.9,
	"lies":           -1.9,
	"worse":          -2.1,
	"unsubscribed":   -1.5,
	"unsubscribing":  -1.5,
	"disliked":       -1.6,
	"overrated":      -1.2,
	"unwatchable":    -2.4,
	"insufferable":   -2.2,
	"disrespectful":  -1.8,
	"unprofessional": -1.7,
}

// Degree modifiers shift the valence of the word that follows.
var boosters = map[string]float64{
	"very":       0.293,
	"really":     0.293,
	"so":         0.293,
	"extremely":  0.293,
	"absolutely": 0.293,
	"totally":    0.293,
	"incredibly": 0.293,
	"super":      0.293,
	"truly":      0.293,
	"slightly":   -0.293,
	"somewhat":   -0.293,
	"kinda":      -0.293,
	"barely":     -0.293,
	"hardly":     -0.293,
	"marginally": -0.293,
}

// Negation words flip the polarity of nearby sentiment-bearing tokens.
var negations = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"none":    true,
	"neither": true,
	"nobody":  true,
	"nothing": true,
	"without": true,
	"cannot":  true,
	"cant":    true,
	"dont":    true,
	"doesnt":  true,
	"didnt":   true,
	"wont":    true,
	"wouldnt": true,
	"isnt":    true,
	"arent":   true,
	"wasnt":   true,
	"werent":  true,
	"aint":    true,
}
