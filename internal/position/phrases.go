package position

import "math/rand"

// Phrases the assistant says when clicked in place.
var idlePhrases = []string{
	"Hi there! Need a hand with your search?",
	"Did you know you can drag me anywhere on the screen?",
	"New vacancies show up every day. Keep an eye out!",
	"A complete profile gets noticed much faster.",
	"Click the tour button any time for a refresher.",
	"I'm here if anything looks confusing.",
}

func randomPhrase() string {
	return idlePhrases[rand.Intn(len(idlePhrases))]
}
