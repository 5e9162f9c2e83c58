package cultural

import "strings"

// StoryOpening is a verified traditional call-and-response opening for a
// culture's oral storytelling tradition.
type StoryOpening struct {
	Text        string
	Response    string
	Translation string
	Verified    bool
}

// StoryClosing is a verified traditional closing line.
type StoryClosing struct {
	Text        string
	Translation string
	Verified    bool
}

// TricksterFigure names the canonical trickster character for a culture.
type TricksterFigure struct {
	Name     string
	Type     string
	Verified bool
}

// Proverb is a verified proverb with its translation.
type Proverb struct {
	Text        string
	Translation string
	Verified    bool
}

// KnowledgeBase is the pre-curated cultural fact table the validator
// checks claims against before falling back to pattern heuristics or a
// model call. Callers may supply their own (e.g. backed by a database);
// DefaultKnowledgeBase is the in-memory seed table.
type KnowledgeBase interface {
	StoryOpening(culture string) (StoryOpening, bool)
	TricksterFigure(culture string) (TricksterFigure, bool)
	Proverbs(culture string) []Proverb

	// AllTricksterFigures supports cross-culture contradiction checks: a
	// trickster name that exists but is attributed to the wrong culture.
	AllTricksterFigures() map[string]TricksterFigure

	// AllProverbs supports matching a claimed proverb against every
	// culture's table, not just the claimed one.
	AllProverbs() map[string][]Proverb
}

// staticKnowledgeBase is the built-in, in-memory KnowledgeBase.
type staticKnowledgeBase struct {
	openings   map[string]StoryOpening
	closings   map[string]StoryClosing
	tricksters map[string]TricksterFigure
	proverbs   map[string][]Proverb
}

// DefaultKnowledgeBase returns the curated seed table.
func DefaultKnowledgeBase() KnowledgeBase {
	return &staticKnowledgeBase{
		openings: map[string]StoryOpening{
			"swahili": {Text: "Hadithi, hadithi!", Response: "Hadithi njoo, uwongo njoo, utamu kolea.", Translation: "Story, story! Story come, fiction come, let sweetness increase.", Verified: true},
			"yoruba":  {Text: "Alo o!", Response: "Alo!", Translation: "The traditional Yoruba story opening.", Verified: true},
			"zulu":    {Text: "Kwesukesukela...", Translation: "Once upon a time...", Verified: true},
			"kikuyu":  {Text: "Ruciini rumwe...", Translation: "One day...", Verified: true},
			"ashanti": {Text: "We do not really mean, we do not really mean, that what we are about to say is true...", Translation: "The Ashanti/Akan story disclaimer.", Verified: true},
			"igbo":    {Text: "Nwanne m, gather close...", Translation: "My sibling, gather close...", Verified: true},
			"maasai":  {Text: "In the time before memory, when the earth was still young...", Verified: true},
			"wolof":   {Text: "Lebbu am na...", Translation: "There was a story...", Verified: true},
			"hausa":   {Text: "Ga ta nan, ga ta nanku...", Translation: "Here it is, here it is for you...", Verified: true},
		},
		closings: map[string]StoryClosing{
			"swahili": {Text: "Hadithi yangu imeisha, kama nzuri kama mbaya.", Translation: "My story is done, whether good or bad.", Verified: true},
			"yoruba":  {Text: "Itan mi dopin.", Translation: "My story ends.", Verified: true},
			"zulu":    {Text: "Cosu cosu iyaphela.", Translation: "And so the story ends.", Verified: true},
			"ashanti": {Text: "This is my story which I have related. If it be sweet, or if it be not sweet, take some elsewhere, and let some come back to me.", Verified: true},
		},
		tricksters: map[string]TricksterFigure{
			"ashanti": {Name: "Anansi", Type: "Spider", Verified: true},
			"yoruba":  {Name: "Ijapa", Type: "Tortoise", Verified: true},
			"zulu":    {Name: "uNogwaja", Type: "Hare", Verified: true},
			"kikuyu":  {Name: "Hare", Type: "Hare", Verified: true},
			"hausa":   {Name: "Gizo", Type: "Spider", Verified: true},
		},
		proverbs: map[string][]Proverb{
			"swahili": {
				{Text: "Haraka haraka haina baraka.", Translation: "Hurry hurry has no blessing.", Verified: true},
				{Text: "Mti hauendi ila kwa nyenzo.", Translation: "A tree does not move without wind.", Verified: true},
				{Text: "Asiyefunzwa na mamaye hufunzwa na ulimwengu.", Translation: "He who is not taught by his mother will be taught by the world.", Verified: true},
			},
			"yoruba": {
				{Text: "Agba kii wa loja, ki ori omo titun wo.", Translation: "An elder does not stay in the market and let a child's head go awry.", Verified: true},
			},
			"zulu": {
				{Text: "Umuntu ngumuntu ngabantu.", Translation: "A person is a person through people.", Verified: true},
				{Text: "Indlela ibuzwa kwabaphambili.", Translation: "The way is asked from those who have gone before.", Verified: true},
			},
			"ashanti": {
				{Text: "Obi nkyere abofra Nyame.", Translation: "Nobody teaches a child about God.", Verified: true},
				{Text: "Se wo were fi na wosankofa a, yenkyi.", Translation: "It is not wrong to go back for what you forgot.", Verified: true},
			},
		},
	}
}

func (kb *staticKnowledgeBase) StoryOpening(culture string) (StoryOpening, bool) {
	o, ok := kb.openings[strings.ToLower(culture)]
	return o, ok
}

func (kb *staticKnowledgeBase) TricksterFigure(culture string) (TricksterFigure, bool) {
	f, ok := kb.tricksters[strings.ToLower(culture)]
	return f, ok
}

func (kb *staticKnowledgeBase) Proverbs(culture string) []Proverb {
	return kb.proverbs[strings.ToLower(culture)]
}

func (kb *staticKnowledgeBase) AllTricksterFigures() map[string]TricksterFigure {
	return kb.tricksters
}

func (kb *staticKnowledgeBase) AllProverbs() map[string][]Proverb {
	return kb.proverbs
}
