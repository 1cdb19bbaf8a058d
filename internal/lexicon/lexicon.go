// Package lexicon holds the shared word lists used by query building,
// phrase mining, and outcome learning.
package lexicon

import (
	"strings"
	"unicode"
)

// ============================================================================
// Keyword selection
// ============================================================================

// ImportantModifiers are mood and visual descriptors kept by keyword
// extraction even when a stopword list would drop them.
var ImportantModifiers = NewSet(
	"beautiful", "stunning", "peaceful", "majestic", "vibrant", "serene", "dramatic",
	"calm", "wild", "bright", "dark", "colorful", "golden", "crystal", "turquoise",
	"cozy", "modern", "futuristic", "vintage", "elegant", "minimalist", "rustic",
	"tropical", "ancient", "historic", "contemporary", "luxurious", "charming",
	"sunset", "sunrise", "night", "day", "morning", "evening", "aerial", "closeup",
	"slow", "fast", "cinematic", "natural", "urban", "rural", "underwater", "timelapse",
)

// VisualDescriptors is the wider allow-list used when building a provider query.
var VisualDescriptors = NewSet(
	"beautiful", "stunning", "peaceful", "majestic", "vibrant", "serene", "dramatic",
	"calm", "wild", "bright", "dark", "colorful", "golden", "crystal", "turquoise",
	"cozy", "modern", "futuristic", "vintage", "elegant", "minimalist", "rustic",
	"tropical", "ancient", "historic", "contemporary", "luxurious", "charming",
	"graceful", "brilliant", "misty", "foggy", "sunny", "cloudy", "starry",
	"clear", "sandy", "rocky", "green", "blue", "red", "white", "black",
	"purple", "pink", "orange", "yellow", "sunset", "sunrise", "twilight",
	"night", "day", "morning", "evening", "autumn", "winter", "spring", "summer",
)

// DomainStopwords are request verbs and media nouns that say nothing about
// what should be on screen.
var DomainStopwords = NewSet(
	"create", "generate", "make", "show", "give", "want", "need", "please",
	"produce", "render", "video", "videos", "image", "images", "footage",
	"clip", "clips", "picture", "pictures", "photo", "photos",
)

// BasicStopwords is the last-resort filter applied when everything else
// filtered a prompt down to nothing.
var BasicStopwords = NewSet(
	"a", "an", "the", "of", "in", "on", "at", "to", "for", "with", "is", "are", "was", "were",
)

// FallbackStopwords is the built-in English list used when no richer
// stopword resource is available.
var FallbackStopwords = NewSet(
	"a", "an", "the", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "as", "is", "was", "are", "were", "be",
	"been", "being", "have", "has", "had", "do", "does", "did", "will",
	"would", "could", "should", "may", "might", "can", "this", "that",
	"these", "those", "i", "you", "he", "she", "it", "we", "they", "my",
	"your", "his", "her", "its", "our", "their", "me", "us", "them",
	"over", "under", "into", "onto", "about", "some", "very", "just",
)

// ============================================================================
// Provider parameter cues
// ============================================================================

// PortraitCues are checked before LandscapeCues; the first hit wins.
var PortraitCues = []string{"tall", "vertical", "standing", "portrait", "upright"}

// LandscapeCues select landscape orientation.
var LandscapeCues = []string{"wide", "landscape", "horizontal", "panoramic", "widescreen"}

// MonochromeCues select a black color filter.
var MonochromeCues = []string{"black and white", "monochrome", "grayscale", "greyscale", "b&w"}

// QualityCues select the large size tier.
var QualityCues = []string{"hd", "high quality", "high-quality", "4k", "ultra hd", "high resolution", "high-resolution"}

// QualityVocabulary is consumed from the query once a quality cue matched.
var QualityVocabulary = []string{"hd", "4k", "ultra", "quality", "resolution"}

// ============================================================================
// Phrase mining
// ============================================================================

// VisualAdjectives start adjective+noun phrases.
var VisualAdjectives = []string{
	"beautiful", "stunning", "peaceful", "majestic", "vibrant", "serene", "dramatic",
	"calm", "wild", "busy", "quiet", "bright", "dark", "colorful", "golden", "crystal",
	"turquoise", "snow-covered", "sun-lit", "moonlit", "misty", "foggy", "cloudy",
	"starry", "aerial", "cinematic", "slow", "fast", "timelapse", "underwater",
	"natural", "urban", "rural", "modern", "ancient", "tropical", "arctic",
}

// CompoundPhrases are emitted when every constituent word occurs in the prompt.
var CompoundPhrases = []string{
	"sunset over ocean", "sunrise over mountain", "waves crashing", "waterfall flowing",
	"city lights", "night sky", "starry night", "full moon", "golden hour",
	"blue sky", "white clouds", "green forest", "snowy mountain", "sandy beach",
	"busy street", "quiet lake", "flowing river", "falling snow", "heavy rain",
	"lightning storm", "fire burning", "traffic moving", "people walking",
	"birds flying", "fish swimming", "flowers blooming", "trees swaying",
	"wind blowing", "sun setting", "moon rising", "clouds moving",
	"aerial view", "drone shot", "close up", "wide angle", "slow motion",
	"time lapse", "underwater scene", "mountain peak", "ocean wave",
}

// MainSubjects are scene nouns emitted directly as phrases.
var MainSubjects = []string{
	"sunset", "sunrise", "ocean", "sea", "beach", "mountain", "forest",
	"city", "street", "building", "waterfall", "river", "lake", "desert",
	"garden", "park", "tree", "flower", "sky", "cloud", "wave", "snow",
	"rain", "storm", "fire", "water", "light", "night", "day", "road",
	"highway", "bridge", "tower", "landscape", "nature", "wildlife",
	"bird", "fish", "animal", "people", "crowd", "traffic", "drone",
	"aerial", "timelapse", "underwater", "volcano", "aurora", "rainbow",
	"canyon", "valley", "cliff", "island", "glacier",
}

// ActionWords pair with their neighbours into subject+verb phrases.
var ActionWords = NewSet(
	"crashing", "flowing", "moving", "walking", "running", "flying",
	"setting", "rising", "shining", "glowing", "falling", "floating",
	"swaying", "blowing", "burning", "blooming", "swimming", "driving",
)

// PrioritySubjects rank candidate primary subjects; multi-word entries are
// always tried before single words.
var PrioritySubjects = []string{
	"northern lights", "milky way", "city skyline", "night sky", "mountain range",
	"hot air balloon", "sand dunes", "coral reef",
	"sunset", "sunrise", "waterfall", "volcano", "aurora", "rainbow",
	"ocean", "sea", "beach", "mountain", "forest", "desert", "canyon",
	"valley", "cliff", "river", "lake", "island", "glacier",
	"city", "street", "highway", "bridge", "building", "skyline", "downtown",
	"tree", "flower", "cloud", "wave", "snow", "rain", "storm", "fire",
	"water", "sky", "sun", "moon", "star",
	"nature", "landscape", "wildlife", "people", "traffic", "light",
}

// ============================================================================
// Prompt classification
// ============================================================================

// Category is a named group of cue terms; order matters, first match wins.
type Category struct {
	Name  string
	Terms []string
}

// SceneTypes classify the kind of scene a prompt asks for.
var SceneTypes = []Category{
	{"nature_landscape", []string{"mountain", "forest", "valley", "canyon", "meadow", "hill", "landscape"}},
	{"water_scene", []string{"ocean", "sea", "lake", "river", "waterfall", "beach", "shore", "waves"}},
	{"urban", []string{"city", "street", "building", "downtown", "urban", "skyline", "traffic"}},
	{"sky", []string{"sky", "cloud", "sunset", "sunrise", "stars", "moon", "aurora"}},
	{"weather", []string{"storm", "rain", "snow", "fog", "lightning", "thunder"}},
	{"wildlife", []string{"animal", "bird", "fish", "wildlife", "deer", "whale", "dolphin"}},
	{"aerial", []string{"aerial", "drone", "birds-eye", "overhead", "flying"}},
	{"timelapse", []string{"timelapse", "time-lapse", "fast", "moving"}},
}

// Moods describe atmosphere.
var Moods = []Category{
	{"peaceful", []string{"peaceful", "calm", "serene", "tranquil", "quiet", "gentle"}},
	{"dramatic", []string{"dramatic", "intense", "powerful", "majestic", "epic"}},
	{"beautiful", []string{"beautiful", "stunning", "breathtaking", "gorgeous", "picturesque"}},
	{"energetic", []string{"busy", "bustling", "active", "lively", "dynamic", "vibrant"}},
	{"dark", []string{"dark", "moody", "mysterious", "ominous", "shadowy"}},
	{"bright", []string{"bright", "sunny", "glowing", "radiant", "luminous"}},
}

// TimesOfDay group time cues.
var TimesOfDay = []Category{
	{"sunrise", []string{"sunrise", "dawn", "morning light", "early morning"}},
	{"sunset", []string{"sunset", "dusk", "golden hour", "evening"}},
	{"night", []string{"night", "nighttime", "evening", "dark"}},
	{"day", []string{"day", "daytime", "afternoon", "midday"}},
}

// Weather lists recognised weather conditions.
var Weather = []string{"storm", "rain", "snow", "fog", "cloudy", "clear", "sunny"}

// Locations group setting cues.
var Locations = []Category{
	{"tropical", []string{"tropical", "paradise", "palm", "caribbean"}},
	{"arctic", []string{"arctic", "polar", "frozen", "ice", "glacier"}},
	{"desert", []string{"desert", "sand", "arid", "dunes"}},
	{"forest", []string{"forest", "woods", "jungle", "trees"}},
	{"urban", []string{"city", "urban", "downtown", "street"}},
	{"coastal", []string{"beach", "coast", "shore", "seaside"}},
	{"mountain", []string{"mountain", "peak", "alpine", "summit"}},
}

// PatternSubjects, PatternTimes and PatternMoods build pattern keys.
var (
	PatternSubjects = []string{
		"ocean", "sea", "beach", "mountain", "forest", "city", "street",
		"waterfall", "sunset", "sunrise", "sky", "cloud", "tree", "flower",
		"building", "road", "bridge", "lake", "river", "desert", "snow",
		"rain", "storm", "fire", "water", "wave", "bird", "animal",
	}
	PatternTimes = []string{
		"morning", "afternoon", "evening", "night", "dawn", "dusk",
		"sunset", "sunrise", "golden hour", "blue hour",
	}
	PatternMoods = []string{
		"peaceful", "calm", "serene", "dramatic", "energetic", "vibrant",
		"tranquil", "majestic", "beautiful", "stunning", "breathtaking",
	}
)

// Colors are color cues used when suggesting prompt improvements.
var Colors = []string{
	"blue", "turquoise", "golden", "red", "green", "crystal clear",
	"bright", "dark", "colorful", "white", "black",
}

// LearningStopwords filter keywords counted by the learner.
var LearningStopwords = NewSet("a", "an", "the", "with", "and", "or", "of", "in", "on", "at", "to")

// ============================================================================
// Matching
// ============================================================================

// Set is a string set.
type Set map[string]struct{}

// NewSet builds a Set from words.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports whether w is in the set.
func (s Set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Words splits text into lowercase letter/digit runs. Hyphens and other
// punctuation separate words, so "close-up" yields "close", "up".
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// SameWord reports whether token is word or a simple plural of it.
func SameWord(token, word string) bool {
	if token == word {
		return true
	}
	if !strings.HasPrefix(token, word) {
		return false
	}
	suffix := token[len(word):]
	return suffix == "s" || suffix == "es"
}

// MatchAt reports whether term (one or more words) occurs in tokens starting at i.
func MatchAt(tokens []string, i int, term []string) bool {
	if len(term) == 0 || i+len(term) > len(tokens) {
		return false
	}
	for j, w := range term {
		if !SameWord(tokens[i+j], w) {
			return false
		}
	}
	return true
}

// Contains reports whether term occurs as a contiguous word sequence in tokens.
func Contains(tokens []string, term string) bool {
	words := Words(term)
	for i := range tokens {
		if MatchAt(tokens, i, words) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every word of term occurs somewhere in tokens,
// in any order.
func ContainsAll(tokens []string, term string) bool {
	for _, w := range Words(term) {
		found := false
		for _, t := range tokens {
			if SameWord(t, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FirstTerm returns the first term, in list order, present in tokens.
func FirstTerm(tokens []string, terms []string) (string, bool) {
	for _, term := range terms {
		if Contains(tokens, term) {
			return term, true
		}
	}
	return "", false
}

// FirstCategory returns the first category with any term present in tokens.
func FirstCategory(tokens []string, categories []Category) (string, bool) {
	for _, c := range categories {
		if _, ok := FirstTerm(tokens, c.Terms); ok {
			return c.Name, true
		}
	}
	return "", false
}
