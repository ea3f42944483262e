package game

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	maxCustomWords   = 50
	maxSpellTextLen  = 64
	customPoolPrefix = "custom"
)

// Spell is a single prompt in the queue. The ID is unique per queue slot
// even when the same incantation repeats across a wrap-around.
type Spell struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
}

func makeSpellList(difficulty Difficulty, incantations []string) []Spell {
	spells := make([]Spell, len(incantations))
	for i, text := range incantations {
		spells[i] = Spell{
			ID:         fmt.Sprintf("%s-%d", difficulty, i),
			Text:       text,
			Difficulty: difficulty,
		}
	}
	return spells
}

var spellData = map[Difficulty][]Spell{
	DifficultyEasy: makeSpellList(DifficultyEasy, []string{
		"LUMOS",
		"NOX",
		"RIDDIKULUS",
		"ALO HOMORA",
		"WINGARDIUM LEVIOSA",
		"PROTEGO",
		"FINITE",
		"EXPELLIARMUS",
		"QUIETUS",
		"REPARO",
		"SONORUS",
		"LUMOS MAXIMA",
		"OBLIVIATE",
		"PETRIFICUS TOTALUS",
		"INCENDIO",
		"DIFFINDO",
		"GLACIUS",
		"SCURGIFY",
		"MUFFLIATO",
		"IMMOBULUS",
	}),
	DifficultyMedium: makeSpellList(DifficultyMedium, []string{
		"EXPECTO PATRONUM",
		"SECTUMSEMPRA",
		"REDUCTO",
		"AVIFORS",
		"LEVICORPUS",
		"IMPERVIUS",
		"ARRESTO MOMENTUM",
		"CONFUNDO",
		"SILENCIO",
		"FERULA",
		"OPPUGNO",
		"RAPTORIALIS IGNIS",
		"CAELUM TEMPESTAS",
		"VENTUS TURBINE",
		"FULGARIUS",
		"CALIGO SPIRA",
		"MORS VINCULA",
		"VIGILO OCULUS",
		"VOLATUS AETERNA",
		"TENEBRAE LIGARE",
	}),
	DifficultyHard: makeSpellList(DifficultyHard, []string{
		"AVADA KEDAVRA",
		"CRUCIO",
		"IMPERIO",
		"FIENDFYRE",
		"HORRENDUM SPIRA",
		"AER LACERUM",
		"MORS CERULEA",
		"VULNERA SANENTUR",
		"INCURSUS NOCTURNA",
		"UMBRA CONFLAGRATIO",
		"VOLATILIS FULMEN",
		"SANGUINIS CIRCULO",
		"NECROSI CATENA",
		"OBSCURA VERITAS",
		"INFINITAS SOMNUS",
		"MALIFICUS LAMINA",
		"GLACIES RUINAM",
		"FUROR TEMPESTAS",
		"ARCANA VORTEX",
		"UMBRAE DEVORO",
	}),
}

// GetSpellPool returns the built-in pool for a difficulty. Unknown
// difficulties fall back to easy so a bad value can never crash a duel.
func GetSpellPool(difficulty Difficulty) []Spell {
	if pool, ok := spellData[difficulty]; ok {
		return pool
	}
	return spellData[DifficultyEasy]
}

// SanitizeCustomWords trims, uppercases and caps a caller-supplied word
// list before it is used as a pool.
func SanitizeCustomWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if len(w) > maxSpellTextLen {
			w = w[:maxSpellTextLen]
		}
		out = append(out, w)
		if len(out) == maxCustomWords {
			break
		}
	}
	return out
}

// BuildSpellQueue shuffles the selected pool and cycles through it until
// the queue holds exactly rounds entries. Every entry gets its own slot
// id so repeated incantations stay distinguishable.
func BuildSpellQueue(rounds int, difficulty Difficulty, customWords []string) []Spell {
	var pool []Spell
	if difficulty == DifficultyCustom {
		words := SanitizeCustomWords(customWords)
		if len(words) > 0 {
			pool = make([]Spell, len(words))
			for i, text := range words {
				pool[i] = Spell{
					ID:         fmt.Sprintf("%s-%d", customPoolPrefix, i),
					Text:       text,
					Difficulty: DifficultyCustom,
				}
			}
		} else {
			pool = append([]Spell(nil), GetSpellPool(DifficultyEasy)...)
		}
	} else {
		pool = append([]Spell(nil), GetSpellPool(difficulty)...)
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	queue := make([]Spell, 0, rounds)
	for len(queue) < rounds {
		next := pool[len(queue)%len(pool)]
		next.ID = fmt.Sprintf("%s-%d", next.ID, len(queue))
		queue = append(queue, next)
	}

	return queue
}
