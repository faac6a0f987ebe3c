package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// Fallback tags for cards whose content matches no topic keywords.
const (
	fallbackTagBaseline = "emt-basic"
	fallbackTagGeneric  = "core-knowledge"
)

// topicPatterns maps topic tags to whole-word keyword alternations tested
// against the lowercased question+answer text. All patterns are tested
// independently; a card may pick up several topic tags.
var topicPatterns = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"airway", keywordPattern("airway", "breathing", "ventilation", "oxygen", "respiratory")},
	{"cardiac", keywordPattern("cardiac", "heart", "pulse", "circulation", "defibrillation", "cpr", "chest pain")},
	{"trauma", keywordPattern("trauma", "bleeding", "hemorrhage", "fracture", "wound", "injury", "burn")},
	{"medical", keywordPattern("seizure", "stroke", "diabetic", "allergic", "anaphylaxis", "poisoning", "overdose")},
	{"pediatric", keywordPattern("pediatric", "child", "infant", "newborn", "neonate")},
	{"obstetric", keywordPattern("obstetric", "pregnancy", "pregnant", "labor", "delivery", "placenta")},
	{"geriatric", keywordPattern("geriatric", "elderly", "older adult")},
	{"assessment", keywordPattern("assessment", "vital signs", "evaluation", "examination", "palpate", "auscultate")},
	{"patient-history", keywordPattern("history", "opqrst", "chief complaint", "allergies")},
	{"treatment", keywordPattern("treatment", "intervention", "management", "emergency care")},
	{"medication", keywordPattern("medication", "dose", "dosage", "epinephrine", "nitroglycerin", "aspirin", "glucose", "naloxone")},
	{"immobilization", keywordPattern("immobilization", "splint", "backboard", "cervical collar", "spinal", "traction")},
	{"scene-safety", keywordPattern("scene safety", "scene size-up", "hazard", "ppe", "body substance isolation")},
	{"communication", keywordPattern("communication", "radio", "handoff", "documentation", "report")},
	{"transport", keywordPattern("transport", "ambulance", "stretcher", "rapid extrication")},
	{"equipment", keywordPattern("equipment", "suction", "bag-valve mask", "nonrebreather", "cannula")},
	{"legal", keywordPattern("consent", "refusal", "legal", "liability", "negligence", "confidentiality", "abandonment")},
	{"protocol", keywordPattern("protocol", "standing order", "medical direction", "guideline")},
}

func keywordPattern(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`)
}

// deriveTags builds a deterministic tag set from a card's own fields:
// chapter tag (when a chapter is present), lowercased type and difficulty
// tags, plus any matching topic tags. When no topic matches, the fallback
// tags mark the card as generic baseline content.
func deriveTags(chapterNumber int, cardType, difficulty, question, answer string) []string {
	var tags []string
	if chapterNumber > 0 {
		tags = append(tags, fmt.Sprintf("chapter-%d", chapterNumber))
	}
	if cardType != "" {
		tags = append(tags, strings.ToLower(cardType))
	}
	if difficulty != "" {
		tags = append(tags, strings.ToLower(difficulty))
	}

	text := strings.ToLower(question + " " + answer)
	topicMatched := false
	for _, tp := range topicPatterns {
		if tp.re.MatchString(text) {
			tags = append(tags, tp.tag)
			topicMatched = true
		}
	}
	if !topicMatched {
		tags = append(tags, fallbackTagBaseline, fallbackTagGeneric)
	}
	return dedupe(tags)
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
