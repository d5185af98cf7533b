package speech

import (
	"context"
	"regexp"
	"strings"
)

// Voice is one on-device synthesizer voice.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// LocalRequest is the payload handed to the on-device synthesizer.
type LocalRequest struct {
	Text  string  `json:"text"`
	Lang  string  `json:"lang"`
	Voice string  `json:"voice,omitempty"`
	Rate  float64 `json:"rate,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
}

// LocalSynthesizer is the on-device synthesis collaborator (in practice the
// browser's speech engine, proxied over the client websocket).
type LocalSynthesizer interface {
	// Voices returns the available voice list. Loading is asynchronous on
	// some platforms and may never complete; the bridge bounds its wait.
	Voices(ctx context.Context) ([]Voice, error)
	// Speak returns when the utterance finishes or fails.
	Speak(ctx context.Context, req LocalRequest) error
	// Stop cancels the current utterance and clears the queue. Idempotent.
	Stop()
}

var femaleNamePattern = regexp.MustCompile(`(?i)(female|woman|alena|jane|oksana|omazh|milena|alyss|zira|samantha|victoria|karen|moira|tessa)`)

// pickVoice selects a voice for lang: a female-sounding voice by name
// pattern first, then any voice for the language, then none.
func pickVoice(voices []Voice, lang string) (Voice, bool) {
	langPrefix := strings.ToLower(strings.SplitN(lang, "-", 2)[0])
	var anyLang *Voice
	for i := range voices {
		v := voices[i]
		if !strings.HasPrefix(strings.ToLower(v.Lang), langPrefix) {
			continue
		}
		if femaleNamePattern.MatchString(v.Name) {
			return v, true
		}
		if anyLang == nil {
			anyLang = &voices[i]
		}
	}
	if anyLang != nil {
		return *anyLang, false
	}
	return Voice{}, false
}
